package comentario

import (
	"encoding/json"
	"net/http"
	"strconv"

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

type CriarComentarioRequest struct {
	Conteudo string `json:"conteudo"`
}

// CriarComentario trata POST /feedbacks/{id}/comentarios
func (h *Handler) CriarComentario(w http.ResponseWriter, r *http.Request) {
	feedbackID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de feedback inválido", http.StatusBadRequest)
		return
	}

	usuarioID, _, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	var req CriarComentarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Conteudo == "" {
		erros.Responder(w, erros.Validacao("o campo 'conteudo' é obrigatório"))
		return
	}

	c := Comentario{
		Conteudo:   req.Conteudo,
		FeedbackID: uint(feedbackID),
		UsuarioID:  usuarioID,
	}
	if err := h.Repository.Criar(h.DB, &c); err != nil {
		http.Error(w, "Erro ao criar comentário", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

// ListarPorFeedbackHTTP trata GET /feedbacks/{id}/comentarios
func (h *Handler) ListarPorFeedbackHTTP(w http.ResponseWriter, r *http.Request) {
	feedbackID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de feedback inválido", http.StatusBadRequest)
		return
	}

	comentarios, err := h.Repository.ListarPorFeedback(h.DB, uint(feedbackID))
	if err != nil {
		http.Error(w, "Erro ao listar comentários", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(toComentarioDTOs(comentarios))
}

// RemoverComentario trata DELETE /comentarios/{id}. Só o autor remove;
// tentativa de outro usuário devolve 403 em vez do no-op silencioso.
func (h *Handler) RemoverComentario(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	solicitanteID, _, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	afetadas, err := h.Repository.Deletar(h.DB, uint(id), solicitanteID)
	if err != nil {
		http.Error(w, "Erro ao remover comentário", http.StatusInternalServerError)
		return
	}
	if afetadas == 0 {
		existe, err := h.Repository.Existe(h.DB, uint(id))
		if err != nil {
			http.Error(w, "Erro ao remover comentário", http.StatusInternalServerError)
			return
		}
		if existe {
			erros.Responder(w, erros.NaoAutorizado("apenas o autor pode remover o comentário"))
		} else {
			erros.Responder(w, erros.NaoEncontrado("comentário"))
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Comentário removido com sucesso"))
}

type AlternarReacaoRequest struct {
	Tipo string `json:"tipo"`
}

// AlternarReacao trata POST /feedbacks/{id}/reacoes
func (h *Handler) AlternarReacao(w http.ResponseWriter, r *http.Request) {
	feedbackID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de feedback inválido", http.StatusBadRequest)
		return
	}

	usuarioID, _, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	var req AlternarReacaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if !ReacaoValida(req.Tipo) {
		erros.Responder(w, erros.Validacao("tipo de reação desconhecido"))
		return
	}

	acao, err := h.Repository.AlternarReacao(h.DB, uint(feedbackID), usuarioID, req.Tipo)
	if err != nil {
		http.Error(w, "Erro ao registrar reação", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"action": acao})
}

// ListarReacoesHTTP trata GET /feedbacks/{id}/reacoes
func (h *Handler) ListarReacoesHTTP(w http.ResponseWriter, r *http.Request) {
	feedbackID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de feedback inválido", http.StatusBadRequest)
		return
	}

	reacoes, err := h.Repository.ListarReacoes(h.DB, uint(feedbackID))
	if err != nil {
		http.Error(w, "Erro ao listar reações", http.StatusInternalServerError)
		return
	}
	contagens, err := h.Repository.ContarReacoes(h.DB, uint(feedbackID))
	if err != nil {
		http.Error(w, "Erro ao contar reações", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(ReacoesResponse{
		Reacoes:   toReacaoDTOs(reacoes),
		Contagens: contagens,
	})
}
