package estatisticas

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/legistaq/api-feedback/internal/auth"
	"github.com/legistaq/api-feedback/internal/erros"
	"github.com/legistaq/api-feedback/internal/usuario"
)

const LimitePadraoRanking = 10

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
		return erros.NaoAutorizado("apenas Master ou Diretor podem ver estatísticas globais")
	}
	return nil
}

func janelaDaQuery(r *http.Request) (Janela, error) {
	var janela Janela
	q := r.URL.Query()

	if v := q.Get("inicio"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return janela, erros.Validacao("inicio deve estar em RFC3339")
		}
		janela.Inicio = &t
	}
	if v := q.Get("fim"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return janela, erros.Validacao("fim deve estar em RFC3339")
		}
		janela.Fim = &t
	}
	return janela, nil
}

func limiteDaQuery(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limite")
	if v == "" {
		return LimitePadraoRanking, nil
	}
	limite, err := strconv.Atoi(v)
	if err != nil || limite <= 0 {
		return 0, erros.Validacao("limite deve ser um inteiro positivo")
	}
	return limite, nil
}

// GeraisHTTP trata GET /estatisticas (Master/Diretor)
func (h *Handler) GeraisHTTP(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}

	g, err := h.Repository.Gerais(h.DB)
	if err != nil {
		http.Error(w, "Erro ao calcular estatísticas", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(g)
}

// FeedbacksHTTP trata GET /estatisticas/feedbacks (Master/Diretor)
func (h *Handler) FeedbacksHTTP(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}
	janela, err := janelaDaQuery(r)
	if err != nil {
		erros.Responder(w, err)
		return
	}

	stats, err := h.Repository.Feedbacks(h.DB, janela, time.Now())
	if err != nil {
		http.Error(w, "Erro ao calcular estatísticas de feedbacks", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}

// ReacoesHTTP trata GET /estatisticas/reacoes (Master/Diretor)
func (h *Handler) ReacoesHTTP(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}
	janela, err := janelaDaQuery(r)
	if err != nil {
		erros.Responder(w, err)
		return
	}

	stats, err := h.Repository.Reacoes(h.DB, janela)
	if err != nil {
		http.Error(w, "Erro ao calcular estatísticas de reações", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}

// IndiceMedioHTTP trata GET /estatisticas/indice-medio (Master/Diretor)
func (h *Handler) IndiceMedioHTTP(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}
	janela, err := janelaDaQuery(r)
	if err != nil {
		erros.Responder(w, err)
		return
	}

	im, err := h.Repository.IndiceMedio(h.DB, janela)
	if err != nil {
		http.Error(w, "Erro ao calcular índice médio", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(im)
}

// TopTaquigrafosHTTP trata GET /estatisticas/top-taquigrafos (Master/Diretor)
func (h *Handler) TopTaquigrafosHTTP(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}
	janela, err := janelaDaQuery(r)
	if err != nil {
		erros.Responder(w, err)
		return
	}
	limite, err := limiteDaQuery(r)
	if err != nil {
		erros.Responder(w, err)
		return
	}

	ranking, err := h.Repository.TopTaquigrafos(h.DB, janela, limite)
	if err != nil {
		http.Error(w, "Erro ao calcular ranking", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(ranking)
}

// TopRevisoresHTTP trata GET /estatisticas/top-revisores (Master/Diretor)
func (h *Handler) TopRevisoresHTTP(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}
	janela, err := janelaDaQuery(r)
	if err != nil {
		erros.Responder(w, err)
		return
	}
	limite, err := limiteDaQuery(r)
	if err != nil {
		erros.Responder(w, err)
		return
	}

	ranking, err := h.Repository.TopRevisores(h.DB, janela, limite)
	if err != nil {
		http.Error(w, "Erro ao calcular ranking", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(ranking)
}

// UsoQuesitosHTTP trata GET /estatisticas/quesitos (Master/Diretor)
func (h *Handler) UsoQuesitosHTTP(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}
	janela, err := janelaDaQuery(r)
	if err != nil {
		erros.Responder(w, err)
		return
	}

	uso, err := h.Repository.UsoQuesitos(h.DB, janela)
	if err != nil {
		http.Error(w, "Erro ao calcular uso de quesitos", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(uso)
}

// MinhasHTTP trata GET /estatisticas/minhas: o recorte depende do papel
// do solicitante. Revisor vê o que enviou, taquígrafo o que recebeu.
func (h *Handler) MinhasHTTP(w http.ResponseWriter, r *http.Request) {
	usuarioID, papel, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	switch papel {
	case usuario.PapelRevisor:
		stats, err := h.Repository.PorRevisor(h.DB, usuarioID)
		if err != nil {
			http.Error(w, "Erro ao calcular estatísticas", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(stats)
	case usuario.PapelTaquigrafo:
		stats, err := h.Repository.PorTaquigrafo(h.DB, usuarioID)
		if err != nil {
			http.Error(w, "Erro ao calcular estatísticas", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(stats)
	default:
		erros.Responder(w, erros.Validacao("gestores devem usar as rotas globais de estatísticas"))
	}
}

// PorRevisorHTTP trata GET /estatisticas/revisores/{id} (Master/Diretor)
func (h *Handler) PorRevisorHTTP(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	stats, err := h.Repository.PorRevisor(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Erro ao calcular estatísticas", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}

// PorTaquigrafoHTTP trata GET /estatisticas/taquigrafos/{id} (Master/Diretor)
func (h *Handler) PorTaquigrafoHTTP(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	stats, err := h.Repository.PorTaquigrafo(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Erro ao calcular estatísticas", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}
