package estatisticas

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/legistaq/api-feedback/internal/aviso"
	"github.com/legistaq/api-feedback/internal/comentario"
	"github.com/legistaq/api-feedback/internal/feedback"
	"github.com/legistaq/api-feedback/internal/padronizacao"
	"github.com/legistaq/api-feedback/internal/quesito"
	"github.com/legistaq/api-feedback/internal/usuario"
)

// Janela delimita as consultas pelo created_at do feedback; ponteiros
// nulos não filtram.
type Janela struct {
	Inicio *time.Time
	Fim    *time.Time
}

func (j Janela) aplicar(q *gorm.DB, coluna string) *gorm.DB {
	if j.Inicio != nil {
		q = q.Where(coluna+" >= ?", *j.Inicio)
	}
	if j.Fim != nil {
		q = q.Where(coluna+" <= ?", *j.Fim)
	}
	return q
}

// Gerais são os totais brutos de cada tabela.
type Gerais struct {
	TotalFeedbacks   int64 `json:"totalFeedbacks"`
	TotalComentarios int64 `json:"totalComentarios"`
	TotalReacoes     int64 `json:"totalReacoes"`
	TotalAvisos      int64 `json:"totalAvisos"`
	TotalTermos      int64 `json:"totalTermos"`
	TotalUsuarios    int64 `json:"totalUsuarios"`
}

type ContagemPorTipo struct {
	Tipo  string `json:"tipo"`
	Total int64  `json:"total"`
}

type ContagemPorLeitura struct {
	Lido  bool  `json:"lido"`
	Total int64 `json:"total"`
}

// PontoMensal é um bucket `YYYY-MM` da série temporal.
type PontoMensal struct {
	Mes   string `json:"mes"`
	Total int64  `json:"total"`
}

type EstatisticasFeedback struct {
	PorTipo    []ContagemPorTipo    `json:"porTipo"`
	PorLeitura []ContagemPorLeitura `json:"porLeitura"`
	PorMes     []PontoMensal        `json:"porMes"`
}

// IndiceMedio é a nota derivada da proporção de feedbacks positivos,
// não uma média do campo nota.
type IndiceMedio struct {
	Positivos  int64   `json:"positivos"`
	Corretivos int64   `json:"corretivos"`
	Total      int64   `json:"total"`
	Indice     float64 `json:"indice"`
}

// ItemRanking é uma linha dos rankings de taquígrafos e revisores.
type ItemRanking struct {
	UsuarioID      uint     `json:"usuarioId"`
	Nome           string   `json:"nome"`
	TotalFeedbacks int64    `json:"totalFeedbacks"`
	NotaMedia      *float64 `json:"notaMedia,omitempty"`
}

// UsoQuesito agrega o uso de um quesito ativo do catálogo.
type UsoQuesito struct {
	QuesitoID        uint   `json:"quesitoId"`
	Titulo           string `json:"titulo"`
	Descricao        string `json:"descricao"`
	TotalUsos        int64  `json:"totalUsos"`
	TotalRevisores   int64  `json:"totalRevisores"`
	TotalTaquigrafos int64  `json:"totalTaquigrafos"`
}

// UsoQuesitoRevisor resume quanto um revisor aplica cada quesito.
type UsoQuesitoRevisor struct {
	QuesitoID        uint   `json:"quesitoId"`
	Titulo           string `json:"titulo"`
	TotalUsos        int64  `json:"totalUsos"`
	TotalTaquigrafos int64  `json:"totalTaquigrafos"`
}

// UsoQuesitoTaquigrafo resume quanto um taquígrafo recebe cada quesito.
type UsoQuesitoTaquigrafo struct {
	QuesitoID      uint   `json:"quesitoId"`
	Titulo         string `json:"titulo"`
	TotalRecebidos int64  `json:"totalRecebidos"`
	TotalRevisores int64  `json:"totalRevisores"`
}

type EstatisticasRevisor struct {
	TotalFeedbacks int64               `json:"totalFeedbacks"`
	PorTipo        []ContagemPorTipo   `json:"porTipo"`
	Quesitos       []UsoQuesitoRevisor `json:"quesitos"`
}

type EstatisticasTaquigrafo struct {
	TotalFeedbacks int64                  `json:"totalFeedbacks"`
	TotalLidos     int64                  `json:"totalLidos"`
	TotalNaoLidos  int64                  `json:"totalNaoLidos"`
	PorTipo        []ContagemPorTipo      `json:"porTipo"`
	Quesitos       []UsoQuesitoTaquigrafo `json:"quesitos"`
}

type Repository interface {
	Gerais(db *gorm.DB) (*Gerais, error)
	Feedbacks(db *gorm.DB, janela Janela, agora time.Time) (*EstatisticasFeedback, error)
	Reacoes(db *gorm.DB, janela Janela) ([]ContagemPorTipo, error)
	IndiceMedio(db *gorm.DB, janela Janela) (*IndiceMedio, error)
	TopTaquigrafos(db *gorm.DB, janela Janela, limite int) ([]ItemRanking, error)
	TopRevisores(db *gorm.DB, janela Janela, limite int) ([]ItemRanking, error)
	UsoQuesitos(db *gorm.DB, janela Janela) ([]UsoQuesito, error)
	PorRevisor(db *gorm.DB, revisorID uint) (*EstatisticasRevisor, error)
	PorTaquigrafo(db *gorm.DB, taquigrafoID uint) (*EstatisticasTaquigrafo, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Gerais(db *gorm.DB) (*Gerais, error) {
	var g Gerais
	contagens := []struct {
		modelo  interface{}
		destino *int64
	}{
		{&feedback.Feedback{}, &g.TotalFeedbacks},
		{&comentario.Comentario{}, &g.TotalComentarios},
		{&comentario.Reacao{}, &g.TotalReacoes},
		{&aviso.Aviso{}, &g.TotalAvisos},
		{&padronizacao.Padronizacao{}, &g.TotalTermos},
		{&usuario.Usuario{}, &g.TotalUsuarios},
	}
	for _, c := range contagens {
		if err := db.Model(c.modelo).Count(c.destino).Error; err != nil {
			return nil, err
		}
	}
	return &g, nil
}

// Feedbacks agrega por tipo, por leitura e por mês. Sem janela, a série
// mensal cobre os últimos seis meses. O bucket mensal é calculado em Go
// para não depender de funções de data de um banco específico.
func (r *repositoryImpl) Feedbacks(db *gorm.DB, janela Janela, agora time.Time) (*EstatisticasFeedback, error) {
	stats := &EstatisticasFeedback{
		PorTipo:    []ContagemPorTipo{},
		PorLeitura: []ContagemPorLeitura{},
		PorMes:     []PontoMensal{},
	}

	q := janela.aplicar(db.Model(&feedback.Feedback{}), "created_at")
	if err := q.Select("tipo, count(*) as total").
		Group("tipo").
		Find(&stats.PorTipo).Error; err != nil {
		return nil, err
	}

	q = janela.aplicar(db.Model(&feedback.Feedback{}), "created_at")
	if err := q.Select("lido, count(*) as total").
		Group("lido").
		Find(&stats.PorLeitura).Error; err != nil {
		return nil, err
	}

	serie := janela
	if serie.Inicio == nil && serie.Fim == nil {
		corte := agora.AddDate(0, -6, 0)
		serie.Inicio = &corte
	}
	var datas []time.Time
	q = serie.aplicar(db.Model(&feedback.Feedback{}), "created_at")
	if err := q.Pluck("created_at", &datas).Error; err != nil {
		return nil, err
	}

	porMes := map[string]int64{}
	for _, d := range datas {
		porMes[d.Format("2006-01")]++
	}
	meses := make([]string, 0, len(porMes))
	for m := range porMes {
		meses = append(meses, m)
	}
	sort.Strings(meses)
	for _, m := range meses {
		stats.PorMes = append(stats.PorMes, PontoMensal{Mes: m, Total: porMes[m]})
	}

	return stats, nil
}

// Reacoes agrupa por tipo; a janela recai sobre o created_at do feedback
// pai, não sobre o da reação.
func (r *repositoryImpl) Reacoes(db *gorm.DB, janela Janela) ([]ContagemPorTipo, error) {
	resultado := []ContagemPorTipo{}
	q := db.Model(&comentario.Reacao{}).
		Select("reacaos.tipo, count(*) as total").
		Joins("INNER JOIN feedbacks ON feedbacks.id = reacaos.feedback_id")
	q = janela.aplicar(q, "feedbacks.created_at")
	err := q.Group("reacaos.tipo").Find(&resultado).Error
	return resultado, err
}

// IndiceMedio calcula (positivos / total) * 5; denominador zero rende
// índice zero.
func (r *repositoryImpl) IndiceMedio(db *gorm.DB, janela Janela) (*IndiceMedio, error) {
	im := &IndiceMedio{}

	q := janela.aplicar(db.Model(&feedback.Feedback{}), "created_at")
	if err := q.Where("tipo = ?", feedback.TipoPositivo).Count(&im.Positivos).Error; err != nil {
		return nil, err
	}
	q = janela.aplicar(db.Model(&feedback.Feedback{}), "created_at")
	if err := q.Where("tipo = ?", feedback.TipoCorretivo).Count(&im.Corretivos).Error; err != nil {
		return nil, err
	}

	im.Total = im.Positivos + im.Corretivos
	if im.Total > 0 {
		im.Indice = float64(im.Positivos) / float64(im.Total) * 5
	}
	return im, nil
}

func (r *repositoryImpl) TopTaquigrafos(db *gorm.DB, janela Janela, limite int) ([]ItemRanking, error) {
	resultado := []ItemRanking{}
	q := db.Model(&feedback.Feedback{}).
		Select("feedbacks.taquigrafo_id as usuario_id, usuarios.nome, count(*) as total_feedbacks, avg(feedbacks.nota) as nota_media").
		Joins("LEFT JOIN usuarios ON usuarios.id = feedbacks.taquigrafo_id")
	q = janela.aplicar(q, "feedbacks.created_at")
	err := q.Group("feedbacks.taquigrafo_id, usuarios.nome").
		Order("total_feedbacks desc, usuario_id asc").
		Limit(limite).
		Find(&resultado).Error
	return resultado, err
}

func (r *repositoryImpl) TopRevisores(db *gorm.DB, janela Janela, limite int) ([]ItemRanking, error) {
	resultado := []ItemRanking{}
	q := db.Model(&feedback.Feedback{}).
		Select("feedbacks.revisor_id as usuario_id, usuarios.nome, count(*) as total_feedbacks").
		Joins("LEFT JOIN usuarios ON usuarios.id = feedbacks.revisor_id")
	q = janela.aplicar(q, "feedbacks.created_at")
	err := q.Group("feedbacks.revisor_id, usuarios.nome").
		Order("total_feedbacks desc, usuario_id asc").
		Limit(limite).
		Find(&resultado).Error
	return resultado, err
}

// UsoQuesitos junta catálogo, entradas e feedbacks; só quesitos ativos
// entram, e a janela recai sobre o created_at do feedback.
func (r *repositoryImpl) UsoQuesitos(db *gorm.DB, janela Janela) ([]UsoQuesito, error) {
	resultado := []UsoQuesito{}
	q := db.Model(&quesito.Quesito{}).
		Select(`quesitos.id as quesito_id, quesitos.titulo, quesitos.descricao,
			count(feedback_quesitos.id) as total_usos,
			count(distinct feedbacks.revisor_id) as total_revisores,
			count(distinct feedbacks.taquigrafo_id) as total_taquigrafos`).
		Joins("INNER JOIN feedback_quesitos ON feedback_quesitos.quesito_id = quesitos.id").
		Joins("INNER JOIN feedbacks ON feedbacks.id = feedback_quesitos.feedback_id").
		Where("quesitos.ativo = ?", true)
	q = janela.aplicar(q, "feedbacks.created_at")
	err := q.Group("quesitos.id, quesitos.titulo, quesitos.descricao").
		Order("total_usos desc").
		Find(&resultado).Error
	return resultado, err
}

func (r *repositoryImpl) PorRevisor(db *gorm.DB, revisorID uint) (*EstatisticasRevisor, error) {
	stats := &EstatisticasRevisor{
		PorTipo:  []ContagemPorTipo{},
		Quesitos: []UsoQuesitoRevisor{},
	}

	if err := db.Model(&feedback.Feedback{}).
		Where("revisor_id = ?", revisorID).
		Count(&stats.TotalFeedbacks).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&feedback.Feedback{}).
		Select("tipo, count(*) as total").
		Where("revisor_id = ?", revisorID).
		Group("tipo").
		Find(&stats.PorTipo).Error; err != nil {
		return nil, err
	}

	err := db.Model(&quesito.Quesito{}).
		Select(`quesitos.id as quesito_id, quesitos.titulo,
			count(feedback_quesitos.id) as total_usos,
			count(distinct feedbacks.taquigrafo_id) as total_taquigrafos`).
		Joins("INNER JOIN feedback_quesitos ON feedback_quesitos.quesito_id = quesitos.id").
		Joins("INNER JOIN feedbacks ON feedbacks.id = feedback_quesitos.feedback_id").
		Where("feedbacks.revisor_id = ?", revisorID).
		Group("quesitos.id, quesitos.titulo").
		Order("total_usos desc").
		Find(&stats.Quesitos).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *repositoryImpl) PorTaquigrafo(db *gorm.DB, taquigrafoID uint) (*EstatisticasTaquigrafo, error) {
	stats := &EstatisticasTaquigrafo{
		PorTipo:  []ContagemPorTipo{},
		Quesitos: []UsoQuesitoTaquigrafo{},
	}

	if err := db.Model(&feedback.Feedback{}).
		Where("taquigrafo_id = ?", taquigrafoID).
		Count(&stats.TotalFeedbacks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&feedback.Feedback{}).
		Where("taquigrafo_id = ? AND lido = ?", taquigrafoID, true).
		Count(&stats.TotalLidos).Error; err != nil {
		return nil, err
	}
	stats.TotalNaoLidos = stats.TotalFeedbacks - stats.TotalLidos

	if err := db.Model(&feedback.Feedback{}).
		Select("tipo, count(*) as total").
		Where("taquigrafo_id = ?", taquigrafoID).
		Group("tipo").
		Find(&stats.PorTipo).Error; err != nil {
		return nil, err
	}

	err := db.Model(&quesito.Quesito{}).
		Select(`quesitos.id as quesito_id, quesitos.titulo,
			count(feedback_quesitos.id) as total_recebidos,
			count(distinct feedbacks.revisor_id) as total_revisores`).
		Joins("INNER JOIN feedback_quesitos ON feedback_quesitos.quesito_id = quesitos.id").
		Joins("INNER JOIN feedbacks ON feedbacks.id = feedback_quesitos.feedback_id").
		Where("feedbacks.taquigrafo_id = ?", taquigrafoID).
		Group("quesitos.id, quesitos.titulo").
		Order("total_recebidos desc").
		Find(&stats.Quesitos).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
