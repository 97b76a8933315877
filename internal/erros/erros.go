package erros

import (
	"errors"
	"fmt"
	"net/http"
)

// Tipos de erro expostos pelo núcleo. Os handlers traduzem cada um
// para o status HTTP correspondente.
var (
	ErrValidacao     = errors.New("dados inválidos")
	ErrNaoEncontrado = errors.New("registro não encontrado")
	ErrNaoAutorizado = errors.New("operação não permitida")
	ErrConflito      = errors.New("conflito de dados")
)

func Validacao(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidacao, msg)
}

func NaoEncontrado(entidade string) error {
	return fmt.Errorf("%w: %s", ErrNaoEncontrado, entidade)
}

func NaoAutorizado(msg string) error {
	return fmt.Errorf("%w: %s", ErrNaoAutorizado, msg)
}

func Conflito(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflito, msg)
}

// StatusHTTP mapeia o erro para o status de resposta.
func StatusHTTP(err error) int {
	switch {
	case errors.Is(err, ErrValidacao):
		return http.StatusBadRequest
	case errors.Is(err, ErrNaoEncontrado):
		return http.StatusNotFound
	case errors.Is(err, ErrNaoAutorizado):
		return http.StatusForbidden
	case errors.Is(err, ErrConflito):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Responder escreve a mensagem do erro com o status adequado.
func Responder(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusHTTP(err))
}
