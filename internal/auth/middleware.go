package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	CtxUsuarioID ctxKey = "usuarioID"
	CtxPapel     ctxKey = "papel"
)

// PapelAtual resolve o papel vigente de um usuário no banco.
type PapelAtual func(usuarioID uint) (string, error)

// MiddlewareAutenticacao valida o Bearer token e injeta id e papel do
// usuário no contexto da requisição. O id vem do token; o papel é
// consultado a cada requisição, para que uma troca feita pelo Master
// valha de imediato em vez de esperar o token expirar.
func MiddlewareAutenticacao(papelAtual PapelAtual) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "Token ausente", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimPrefix(h, "Bearer ")
			claims, err := ParseAndValidate(raw)
			if err != nil {
				http.Error(w, "Token inválido", http.StatusUnauthorized)
				return
			}
			papel, err := papelAtual(claims.UserID)
			if err != nil {
				http.Error(w, "Usuário não encontrado", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), CtxUsuarioID, claims.UserID)
			ctx = context.WithValue(ctx, CtxPapel, papel)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsuarioDoContexto devolve id e papel colocados pelo middleware.
func UsuarioDoContexto(r *http.Request) (uint, string, bool) {
	id, ok := r.Context().Value(CtxUsuarioID).(uint)
	if !ok {
		return 0, "", false
	}
	papel, _ := r.Context().Value(CtxPapel).(string)
	return id, papel, true
}

// RequirePapel restringe a rota aos papéis informados.
func RequirePapel(papeis ...string) func(http.Handler) http.Handler {
	permitidos := make(map[string]bool, len(papeis))
	for _, p := range papeis {
		permitidos[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			papel, _ := r.Context().Value(CtxPapel).(string)
			if !permitidos[papel] {
				http.Error(w, "Acesso restrito", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
