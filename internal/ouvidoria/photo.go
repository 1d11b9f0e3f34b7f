package ouvidoria

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxPhotoBytes limita o tamanho da foto enviada no cadastro de funcionário.
const MaxPhotoBytes = 2 << 20

var (
	// ErrNoPhoto indica funcionário sem foto.
	ErrNoPhoto = errors.New("funcionário sem foto")
	// ErrNotImage indica conteúdo que não é imagem.
	ErrNotImage = errors.New("a foto deve ser uma imagem")
)

// Photo é a foto decodificada com o tipo detectado pelos primeiros bytes.
type Photo struct {
	Data      []byte
	MIME      string
	Extension string
}

// DecodePhoto decodifica a foto em base64, aceitando também o formato data URL.
func DecodePhoto(encoded string) (Photo, error) {
	encoded = strings.TrimSpace(encoded)
	if idx := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && idx >= 0 {
		encoded = encoded[idx+1:]
	}
	if encoded == "" {
		return Photo{}, ErrNoPhoto
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Photo{}, ErrNotImage
	}
	return SniffPhoto(data)
}

// SniffPhoto detecta o tipo da imagem e rejeita outros conteúdos.
func SniffPhoto(data []byte) (Photo, error) {
	if len(data) == 0 {
		return Photo{}, ErrNoPhoto
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Photo{}, ErrNotImage
	}
	return Photo{Data: data, MIME: mt.String(), Extension: mt.Extension()}, nil
}

// EncodePhoto prepara bytes enviados pelo formulário para o payload do backend.
func EncodePhoto(data []byte) (string, error) {
	if len(data) > MaxPhotoBytes {
		return "", errors.New("a foto deve ter no máximo 2 MB")
	}
	if _, err := SniffPhoto(data); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
