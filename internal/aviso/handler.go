package aviso

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

func somenteGestores(r *http.Request) error {
	_, papel, ok := auth.UsuarioDoContexto(r)
	if !ok {
		return erros.NaoAutorizado("não autenticado")
	}
	if papel != usuario.PapelMaster && papel != usuario.PapelDiretor {
		return erros.NaoAutorizado("apenas Master ou Diretor podem gerenciar avisos")
	}
	return nil
}

type CriarAvisoRequest struct {
	Titulo        string     `json:"titulo"`
	Conteudo      string     `json:"conteudo"`
	Tipo          string     `json:"tipo"`
	Destinatarios []string   `json:"destinatarios"`
	PublicarEm    *time.Time `json:"publicarEm"`
}

// CriarAviso trata POST /avisos (Master/Diretor). PublicarEm ausente
// assume o instante da criação.
func (h *Handler) CriarAviso(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}
	usuarioID, _, _ := auth.UsuarioDoContexto(r)

	var req CriarAvisoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Titulo == "" || req.Conteudo == "" {
		erros.Responder(w, erros.Validacao("titulo e conteudo são obrigatórios"))
		return
	}
	if !TipoValido(req.Tipo) {
		erros.Responder(w, erros.Validacao("tipo deve ser COTIDIANO, URGENTE ou RECORRENTE"))
		return
	}

	publicarEm := time.Now()
	if req.PublicarEm != nil {
		publicarEm = *req.PublicarEm
	}
	destinatarios := req.Destinatarios
	if destinatarios == nil {
		destinatarios = []string{}
	}

	a := Aviso{
		Titulo:        req.Titulo,
		Conteudo:      req.Conteudo,
		Tipo:          req.Tipo,
		Destinatarios: destinatarios,
		PublicarEm:    publicarEm,
		Ativo:         true,
		UsuarioID:     usuarioID,
	}
	if err := h.Repository.Criar(h.DB, &a); err != nil {
		http.Error(w, "Erro ao criar aviso", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(a)
}

// visiveisPara lista os avisos ativos já publicados e destinados ao papel.
func (h *Handler) visiveisPara(papel string, agora time.Time) ([]Aviso, error) {
	ativos, err := h.Repository.ListarAtivos(h.DB, agora)
	if err != nil {
		return nil, err
	}
	visiveis := make([]Aviso, 0, len(ativos))
	for _, a := range ativos {
		if a.VisivelPara(papel, agora) {
			visiveis = append(visiveis, a)
		}
	}
	return visiveis, nil
}

// ListarAvisos trata GET /avisos: visíveis ao papel do chamador,
// anotados com o estado de leitura.
func (h *Handler) ListarAvisos(w http.ResponseWriter, r *http.Request) {
	usuarioID, papel, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	visiveis, err := h.visiveisPara(papel, time.Now())
	if err != nil {
		http.Error(w, "Erro ao listar avisos", http.StatusInternalServerError)
		return
	}
	lidos, err := h.Repository.LeiturasDoUsuario(h.DB, usuarioID)
	if err != nil {
		http.Error(w, "Erro ao listar avisos", http.StatusInternalServerError)
		return
	}

	out := make([]AvisoComLeituraDTO, 0, len(visiveis))
	for _, a := range visiveis {
		out = append(out, toLeituraDTO(a, lidos[a.ID]))
	}
	json.NewEncoder(w).Encode(out)
}

// BuscarPorIDHTTP trata GET /avisos/{id}
func (h *Handler) BuscarPorIDHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	a, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		erros.Responder(w, erros.NaoEncontrado("aviso"))
		return
	}
	json.NewEncoder(w).Encode(a)
}

type AtualizarAvisoRequest struct {
	Titulo        *string    `json:"titulo"`
	Conteudo      *string    `json:"conteudo"`
	Tipo          *string    `json:"tipo"`
	Ativo         *bool      `json:"ativo"`
	Destinatarios []string   `json:"destinatarios"`
	PublicarEm    *time.Time `json:"publicarEm"`
}

// AtualizarAviso trata PUT /avisos/{id} (Master/Diretor)
func (h *Handler) AtualizarAviso(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	var req AtualizarAvisoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Tipo != nil && !TipoValido(*req.Tipo) {
		erros.Responder(w, erros.Validacao("tipo deve ser COTIDIANO, URGENTE ou RECORRENTE"))
		return
	}

	campos := map[string]interface{}{}
	if req.Titulo != nil {
		campos["titulo"] = *req.Titulo
	}
	if req.Conteudo != nil {
		campos["conteudo"] = *req.Conteudo
	}
	if req.Tipo != nil {
		campos["tipo"] = *req.Tipo
	}
	if req.Ativo != nil {
		campos["ativo"] = *req.Ativo
	}
	if req.Destinatarios != nil {
		serializado, err := json.Marshal(req.Destinatarios)
		if err != nil {
			http.Error(w, "Erro ao atualizar aviso", http.StatusInternalServerError)
			return
		}
		campos["destinatarios"] = string(serializado)
	}
	if req.PublicarEm != nil {
		campos["publicar_em"] = *req.PublicarEm
	}

	if err := h.Repository.Atualizar(h.DB, uint(id), campos); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			erros.Responder(w, erros.NaoEncontrado("aviso"))
			return
		}
		http.Error(w, "Erro ao atualizar aviso", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Aviso atualizado com sucesso"))
}

// DeletarAviso trata DELETE /avisos/{id} (Master/Diretor)
func (h *Handler) DeletarAviso(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	if err := h.Repository.Deletar(h.DB, uint(id)); err != nil {
		http.Error(w, "Erro ao remover aviso", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarcarComoLidoHTTP trata POST /avisos/{id}/lido (upsert, idempotente)
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
		http.Error(w, "Erro ao marcar aviso como lido", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Aviso marcado como lido"))
}

// RegistrarVisualizacaoHTTP trata POST /avisos/{id}/visualizacao.
// Sempre insere; é telemetria, não estado de leitura.
func (h *Handler) RegistrarVisualizacaoHTTP(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Repository.RegistrarVisualizacao(h.DB, uint(id), usuarioID); err != nil {
		http.Error(w, "Erro ao registrar visualização", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// ContarNaoLidosHTTP trata GET /avisos/nao-lidos: diferença entre o
// conjunto visível e o conjunto lido.
func (h *Handler) ContarNaoLidosHTTP(w http.ResponseWriter, r *http.Request) {
	usuarioID, papel, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	visiveis, err := h.visiveisPara(papel, time.Now())
	if err != nil {
		http.Error(w, "Erro ao contar avisos", http.StatusInternalServerError)
		return
	}
	lidos, err := h.Repository.LeiturasDoUsuario(h.DB, usuarioID)
	if err != nil {
		http.Error(w, "Erro ao contar avisos", http.StatusInternalServerError)
		return
	}

	naoLidos := 0
	for _, a := range visiveis {
		if !lidos[a.ID] {
			naoLidos++
		}
	}

	fmt.Fprintf(w, `{"total":%d}`, naoLidos)
}

// EstatisticasHTTP trata GET /avisos/{id}/estatisticas
func (h *Handler) EstatisticasHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	stats, err := h.Repository.Estatisticas(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Erro ao calcular estatísticas", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}

// ListarComEstatisticasHTTP trata GET /avisos/estatisticas (painel de
// gestão).
func (h *Handler) ListarComEstatisticasHTTP(w http.ResponseWriter, r *http.Request) {
	if err := somenteGestores(r); err != nil {
		erros.Responder(w, err)
		return
	}
	usuarioID, papel, _ := auth.UsuarioDoContexto(r)

	visiveis, err := h.visiveisPara(papel, time.Now())
	if err != nil {
		http.Error(w, "Erro ao listar avisos", http.StatusInternalServerError)
		return
	}
	lidos, err := h.Repository.LeiturasDoUsuario(h.DB, usuarioID)
	if err != nil {
		http.Error(w, "Erro ao listar avisos", http.StatusInternalServerError)
		return
	}

	out := make([]AvisoComEstatisticasDTO, 0, len(visiveis))
	for _, a := range visiveis {
		stats, err := h.Repository.Estatisticas(h.DB, a.ID)
		if err != nil {
			http.Error(w, "Erro ao calcular estatísticas", http.StatusInternalServerError)
			return
		}
		out = append(out, AvisoComEstatisticasDTO{
			AvisoComLeituraDTO:       toLeituraDTO(a, lidos[a.ID]),
			EstatisticasVisualizacao: *stats,
		})
	}
	json.NewEncoder(w).Encode(out)
}
