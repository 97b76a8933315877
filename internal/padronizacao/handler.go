package padronizacao

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/legistaq/api-feedback/internal/auth"
	"github.com/legistaq/api-feedback/internal/erros"
)

// Handler encapsula o DB e o Repository
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

type CriarPadronizacaoRequest struct {
	Termo     string `json:"termo"`
	Definicao string `json:"definicao"`
}

// CriarPadronizacao trata POST /padronizacao
func (h *Handler) CriarPadronizacao(w http.ResponseWriter, r *http.Request) {
	usuarioID, _, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	var req CriarPadronizacaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Termo == "" {
		erros.Responder(w, erros.Validacao("o campo 'termo' é obrigatório"))
		return
	}

	p := Padronizacao{Termo: req.Termo, Definicao: req.Definicao, UsuarioID: usuarioID}
	if err := h.Repository.Criar(h.DB, &p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			erros.Responder(w, erros.Conflito("já existe um verbete com esse termo"))
			return
		}
		http.Error(w, "Erro ao criar verbete", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

// ListarPadronizacao trata GET /padronizacao (?busca=... pesquisa)
func (h *Handler) ListarPadronizacao(w http.ResponseWriter, r *http.Request) {
	busca := r.URL.Query().Get("busca")

	var (
		termos []Padronizacao
		err    error
	)
	if busca != "" {
		termos, err = h.Repository.Buscar(h.DB, busca)
	} else {
		termos, err = h.Repository.ListarTodos(h.DB)
	}
	if err != nil {
		http.Error(w, "Erro ao listar verbetes", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(termos)
}

// ContarHTTP trata GET /padronizacao/contagem
func (h *Handler) ContarHTTP(w http.ResponseWriter, r *http.Request) {
	total, err := h.Repository.Contar(h.DB)
	if err != nil {
		http.Error(w, "Erro ao contar verbetes", http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, `{"total":%d}`, total)
}

// BuscarPorIDHTTP trata GET /padronizacao/{id}
func (h *Handler) BuscarPorIDHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	p, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		erros.Responder(w, erros.NaoEncontrado("verbete"))
		return
	}
	json.NewEncoder(w).Encode(p)
}

type AtualizarPadronizacaoRequest struct {
	Termo     *string `json:"termo"`
	Definicao *string `json:"definicao"`
}

// AtualizarPadronizacao trata PUT /padronizacao/{id}
func (h *Handler) AtualizarPadronizacao(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	var req AtualizarPadronizacaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Termo != nil && *req.Termo == "" {
		erros.Responder(w, erros.Validacao("termo não pode ficar vazio"))
		return
	}

	campos := map[string]interface{}{}
	if req.Termo != nil {
		campos["termo"] = *req.Termo
	}
	if req.Definicao != nil {
		campos["definicao"] = *req.Definicao
	}

	if err := h.Repository.Atualizar(h.DB, uint(id), campos); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			erros.Responder(w, erros.NaoEncontrado("verbete"))
			return
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			erros.Responder(w, erros.Conflito("já existe um verbete com esse termo"))
			return
		}
		http.Error(w, "Erro ao atualizar verbete", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Verbete atualizado com sucesso"))
}

// DeletarPadronizacao trata DELETE /padronizacao/{id}
func (h *Handler) DeletarPadronizacao(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	if err := h.Repository.Deletar(h.DB, uint(id)); err != nil {
		http.Error(w, "Erro ao remover verbete", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarcarComoLidoHTTP trata POST /padronizacao/{id}/lido
func (h *Handler) MarcarComoLidoHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	usuarioID, _, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	if err := h.Repository.MarcarComoLido(h.DB, uint(id), usuarioID, time.Now()); err != nil {
		http.Error(w, "Erro ao marcar verbete como lido", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Verbete marcado como lido"))
}

// MarcarTodosComoLidosHTTP trata POST /padronizacao/lidos
func (h *Handler) MarcarTodosComoLidosHTTP(w http.ResponseWriter, r *http.Request) {
	usuarioID, _, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	if err := h.Repository.MarcarTodosComoLidos(h.DB, usuarioID, time.Now()); err != nil {
		http.Error(w, "Erro ao marcar verbetes como lidos", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Todos os verbetes marcados como lidos"))
}

// ContarNaoLidosHTTP trata GET /padronizacao/nao-lidos
func (h *Handler) ContarNaoLidosHTTP(w http.ResponseWriter, r *http.Request) {
	usuarioID, _, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	total, err := h.Repository.ContarNaoLidos(h.DB, usuarioID, time.Now())
	if err != nil {
		http.Error(w, "Erro ao contar verbetes não lidos", http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, `{"total":%d}`, total)
}
