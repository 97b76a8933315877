package quesito

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/legistaq/api-feedback/internal/auth"
	"github.com/legistaq/api-feedback/internal/erros"
	"github.com/legistaq/api-feedback/internal/usuario"
)

// Handler encapsula o DB e o Repository
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

// somenteGestores libera apenas Master e Diretor.
func somenteGestores(r *http.Request) error {
	_, papel, ok := auth.UsuarioDoContexto(r)
	if !ok {
		return erros.NaoAutorizado("não autenticado")
	}
	if papel != usuario.PapelMaster && papel != usuario.PapelDiretor {
		return erros.NaoAutorizado("apenas Master ou Diretor podem gerenciar quesitos")
	}
	return nil
}

type CriarQuesitoRequest struct {
	Titulo    string `json:"titulo"`
	Descricao string `json:"descricao"`
	Ordem     int    `json:"ordem"`
	Ativo     *bool  `json:"ativo"`
}

// CriarQuesito trata POST /quesitos (Master/Diretor)
func (h *Handler) CriarQuesito(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}

	usuarioID, _, _ := auth.UsuarioDoContexto(r)

	var req CriarQuesitoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Titulo == "" {
		erros.Responder(w, erros.Validacao("o campo 'titulo' é obrigatório"))
		return
	}

	ativo := true
	if req.Ativo != nil {
		ativo = *req.Ativo
	}

	q := Quesito{
		Titulo:    req.Titulo,
		Descricao: req.Descricao,
		Ordem:     req.Ordem,
		Ativo:     ativo,
		UsuarioID: usuarioID,
	}
	if err := h.Repository.Criar(h.DB, &q); err != nil {
		http.Error(w, "Erro ao criar quesito", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(q)
}

func filtroDaQuery(r *http.Request) (Filtro, error) {
	var filtro Filtro
	if v := r.URL.Query().Get("ativo"); v != "" {
		ativo, err := strconv.ParseBool(v)
		if err != nil {
			return filtro, erros.Validacao("ativo deve ser true ou false")
		}
		filtro.Ativo = &ativo
	}
	return filtro, nil
}

// ListarQuesitos trata GET /quesitos (?ativo=true filtra)
func (h *Handler) ListarQuesitos(w http.ResponseWriter, r *http.Request) {
	filtro, err := filtroDaQuery(r)
	if err != nil {
		erros.Responder(w, err)
		return
	}

	quesitos, err := h.Repository.Listar(h.DB, filtro)
	if err != nil {
		http.Error(w, "Erro ao listar quesitos", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(quesitos)
}

// ContarHTTP trata GET /quesitos/contagem
func (h *Handler) ContarHTTP(w http.ResponseWriter, r *http.Request) {
	filtro, err := filtroDaQuery(r)
	if err != nil {
		erros.Responder(w, err)
		return
	}

	total, err := h.Repository.Contar(h.DB, filtro)
	if err != nil {
		http.Error(w, "Erro ao contar quesitos", http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, `{"total":%d}`, total)
}

// BuscarPorIDHTTP trata GET /quesitos/{id}
func (h *Handler) BuscarPorIDHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	q, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		erros.Responder(w, erros.NaoEncontrado("quesito"))
		return
	}
	json.NewEncoder(w).Encode(q)
}

type AtualizarQuesitoRequest struct {
	Titulo    *string `json:"titulo"`
	Descricao *string `json:"descricao"`
	Ordem     *int    `json:"ordem"`
	Ativo     *bool   `json:"ativo"`
}

// AtualizarQuesito trata PUT /quesitos/{id} (Master/Diretor). Desativar
// e reativar passam por aqui; entradas históricas não são afetadas.
func (h *Handler) AtualizarQuesito(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	var req AtualizarQuesitoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Titulo != nil && *req.Titulo == "" {
		erros.Responder(w, erros.Validacao("titulo não pode ficar vazio"))
		return
	}

	campos := map[string]interface{}{}
	if req.Titulo != nil {
		campos["titulo"] = *req.Titulo
	}
	if req.Descricao != nil {
		campos["descricao"] = *req.Descricao
	}
	if req.Ordem != nil {
		campos["ordem"] = *req.Ordem
	}
	if req.Ativo != nil {
		campos["ativo"] = *req.Ativo
	}

	if err := h.Repository.Atualizar(h.DB, uint(id), campos); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			erros.Responder(w, erros.NaoEncontrado("quesito"))
			return
		}
		http.Error(w, "Erro ao atualizar quesito", http.StatusInternalServerError)
		return
	}

	q, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Erro ao buscar quesito", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(q)
}

// DeletarQuesito trata DELETE /quesitos/{id} (Master/Diretor). A remoção
// física é recusada enquanto houver feedbacks referenciando o quesito;
// nesse caso o caminho é a desativação.
func (h *Handler) DeletarQuesito(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	if _, err := h.Repository.BuscarPorID(h.DB, uint(id)); err != nil {
		erros.Responder(w, erros.NaoEncontrado("quesito"))
		return
	}

	if err := h.Repository.Deletar(h.DB, uint(id)); err != nil {
		if errors.Is(err, erros.ErrConflito) {
			erros.Responder(w, err)
			return
		}
		http.Error(w, "Erro ao remover quesito", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type ReordenarRequest struct {
	Itens []ReordenarItem `json:"itens"`
}

// ReordenarHTTP trata PUT /quesitos/ordem (Master/Diretor)
func (h *Handler) ReordenarHTTP(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}

	var req ReordenarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	if err := h.Repository.Reordenar(h.DB, req.Itens); err != nil {
		http.Error(w, "Erro ao reordenar quesitos", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Quesitos reordenados com sucesso"))
}
