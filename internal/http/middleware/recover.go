package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/util"
)

// PanicPage desenha a tela de erro inesperado com o código informado.
type PanicPage func(w http.ResponseWriter, r *http.Request, code string)

// Recover captura panics, registra o erro e responde com a tela genérica.
func Recover(page PanicPage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				code := middleware.GetReqID(r.Context())
				if code == "" {
					code = util.NewID()
				}
				log.Error().Interface("panic", rec).Str("code", code).Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).Msg("panic recuperado")
				page(w, r, code)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
