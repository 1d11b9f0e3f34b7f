package resource

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// decodeCreated extrai o registro criado da resposta; ok é falso sem corpo ou sem chave.
func decodeCreated[T any, K comparable](raw json.RawMessage, key func(T) K) (T, bool) {
	var item T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return item, false
	}
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return item, false
	}
	var zero K
	if key(item) == zero {
		return item, false
	}
	return item, true
}

// mergeResponse parte do registro aplicado localmente e sobrepõe os campos não nulos
// devolvidos pelo servidor, exceto a chave.
func mergeResponse[T any](local T, raw json.RawMessage, keyField string) (T, error) {
	base, err := json.Marshal(local)
	if err != nil {
		return local, err
	}
	var out T
	if err := json.Unmarshal(base, &out); err != nil {
		return local, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return out, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return out, nil
	}
	for name, value := range fields {
		if name == keyField || bytes.Equal(bytes.TrimSpace(value), jsonNull) {
			delete(fields, name)
		}
	}
	if len(fields) == 0 {
		return out, nil
	}

	overlay, err := json.Marshal(fields)
	if err != nil {
		return out, nil
	}
	var merged T
	if err := json.Unmarshal(base, &merged); err != nil {
		return out, nil
	}
	if err := json.Unmarshal(overlay, &merged); err != nil {
		// resposta com tipos divergentes: mantém o registro local
		return out, nil
	}
	return merged, nil
}
