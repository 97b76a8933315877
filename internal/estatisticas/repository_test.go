package estatisticas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/legistaq/api-feedback/internal/aviso"
	"github.com/legistaq/api-feedback/internal/comentario"
	"github.com/legistaq/api-feedback/internal/feedback"
	"github.com/legistaq/api-feedback/internal/padronizacao"
	"github.com/legistaq/api-feedback/internal/quesito"
	"github.com/legistaq/api-feedback/internal/usuario"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&usuario.Usuario{},
		&quesito.Quesito{},
		&feedback.Feedback{},
		&feedback.FeedbackQuesito{},
		&comentario.Comentario{},
		&comentario.Reacao{},
		&aviso.Aviso{},
		&aviso.AvisoLeitura{},
		&aviso.AvisoVisualizacao{},
		&padronizacao.Padronizacao{},
		&padronizacao.PadronizacaoLeitura{},
	))
	return db
}

func criarUsuario(t *testing.T, db *gorm.DB, nome, papel string) usuario.Usuario {
	u := usuario.Usuario{Nome: nome, Email: nome + "@camara.test", Senha: "hash", Papel: papel}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func criarFeedback(t *testing.T, db *gorm.DB, tipo string, revisorID, taquigrafoID uint, nota *float64) feedback.Feedback {
	f := feedback.Feedback{Tipo: tipo, RevisorID: revisorID, TaquigrafoID: taquigrafoID, Nota: nota}
	require.NoError(t, db.Create(&f).Error)
	return f
}

func nota(v float64) *float64 { return &v }

func TestGerais(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	r := criarUsuario(t, db, "revisora", usuario.PapelRevisor)
	tq := criarUsuario(t, db, "taquigrafo", usuario.PapelTaquigrafo)
	f := criarFeedback(t, db, feedback.TipoPositivo, r.ID, tq.ID, nil)
	require.NoError(t, db.Create(&comentario.Comentario{Conteudo: "ok", FeedbackID: f.ID, UsuarioID: tq.ID}).Error)
	require.NoError(t, db.Create(&comentario.Reacao{Tipo: comentario.ReacaoEntendi, FeedbackID: f.ID, UsuarioID: tq.ID}).Error)
	require.NoError(t, db.Create(&aviso.Aviso{Titulo: "Plantão", Ativo: true, PublicarEm: time.Now()}).Error)
	require.NoError(t, db.Create(&padronizacao.Padronizacao{Termo: "aparte", Definicao: "x"}).Error)

	g, err := repo.Gerais(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.TotalFeedbacks)
	assert.Equal(t, int64(1), g.TotalComentarios)
	assert.Equal(t, int64(1), g.TotalReacoes)
	assert.Equal(t, int64(1), g.TotalAvisos)
	assert.Equal(t, int64(1), g.TotalTermos)
	assert.Equal(t, int64(2), g.TotalUsuarios)
}

func TestIndiceMedio(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	r := criarUsuario(t, db, "revisora", usuario.PapelRevisor)
	tq := criarUsuario(t, db, "taquigrafo", usuario.PapelTaquigrafo)

	// denominador zero rende índice zero
	im, err := repo.IndiceMedio(db, Janela{})
	require.NoError(t, err)
	assert.Zero(t, im.Indice)

	for i := 0; i < 3; i++ {
		criarFeedback(t, db, feedback.TipoPositivo, r.ID, tq.ID, nil)
	}
	criarFeedback(t, db, feedback.TipoCorretivo, r.ID, tq.ID, nil)

	im, err = repo.IndiceMedio(db, Janela{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), im.Positivos)
	assert.Equal(t, int64(1), im.Corretivos)
	assert.Equal(t, int64(4), im.Total)
	assert.InDelta(t, 3.75, im.Indice, 0.0001)
}

func TestFeedbacksAgregados(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	agora := time.Now()

	r := criarUsuario(t, db, "revisora", usuario.PapelRevisor)
	tq := criarUsuario(t, db, "taquigrafo", usuario.PapelTaquigrafo)

	criarFeedback(t, db, feedback.TipoCorretivo, r.ID, tq.ID, nil)
	criarFeedback(t, db, feedback.TipoCorretivo, r.ID, tq.ID, nil)
	lido := criarFeedback(t, db, feedback.TipoPositivo, r.ID, tq.ID, nil)
	require.NoError(t, db.Model(&feedback.Feedback{}).Where("id = ?", lido.ID).
		Updates(map[string]interface{}{"lido": true}).Error)

	stats, err := repo.Feedbacks(db, Janela{}, agora)
	require.NoError(t, err)

	porTipo := map[string]int64{}
	for _, c := range stats.PorTipo {
		porTipo[c.Tipo] = c.Total
	}
	assert.Equal(t, int64(2), porTipo[feedback.TipoCorretivo])
	assert.Equal(t, int64(1), porTipo[feedback.TipoPositivo])

	porLeitura := map[bool]int64{}
	for _, c := range stats.PorLeitura {
		porLeitura[c.Lido] = c.Total
	}
	assert.Equal(t, int64(2), porLeitura[false])
	assert.Equal(t, int64(1), porLeitura[true])

	require.Len(t, stats.PorMes, 1)
	assert.Equal(t, agora.Format("2006-01"), stats.PorMes[0].Mes)
	assert.Equal(t, int64(3), stats.PorMes[0].Total)
}

func TestReacoesComJanelaNoFeedbackPai(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	agora := time.Now()

	r := criarUsuario(t, db, "revisora", usuario.PapelRevisor)
	tq := criarUsuario(t, db, "taquigrafo", usuario.PapelTaquigrafo)

	recente := criarFeedback(t, db, feedback.TipoCorretivo, r.ID, tq.ID, nil)
	antigo := criarFeedback(t, db, feedback.TipoCorretivo, r.ID, tq.ID, nil)
	require.NoError(t, db.Model(&feedback.Feedback{}).Where("id = ?", antigo.ID).
		UpdateColumn("created_at", agora.AddDate(0, -3, 0)).Error)

	require.NoError(t, db.Create(&comentario.Reacao{Tipo: comentario.ReacaoEntendi, FeedbackID: recente.ID, UsuarioID: tq.ID}).Error)
	require.NoError(t, db.Create(&comentario.Reacao{Tipo: comentario.ReacaoObrigado, FeedbackID: antigo.ID, UsuarioID: tq.ID}).Error)

	todas, err := repo.Reacoes(db, Janela{})
	require.NoError(t, err)
	assert.Len(t, todas, 2)

	corte := agora.AddDate(0, -1, 0)
	recentes, err := repo.Reacoes(db, Janela{Inicio: &corte})
	require.NoError(t, err)
	require.Len(t, recentes, 1)
	assert.Equal(t, comentario.ReacaoEntendi, recentes[0].Tipo)
}

func TestTopTaquigrafos(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	r := criarUsuario(t, db, "revisora", usuario.PapelRevisor)
	t1 := criarUsuario(t, db, "alice", usuario.PapelTaquigrafo)
	t2 := criarUsuario(t, db, "bruno", usuario.PapelTaquigrafo)

	criarFeedback(t, db, feedback.TipoPositivo, r.ID, t1.ID, nota(4))
	criarFeedback(t, db, feedback.TipoCorretivo, r.ID, t1.ID, nota(5))
	criarFeedback(t, db, feedback.TipoCorretivo, r.ID, t2.ID, nota(3))

	ranking, err := repo.TopTaquigrafos(db, Janela{}, 10)
	require.NoError(t, err)
	require.Len(t, ranking, 2)

	assert.Equal(t, t1.ID, ranking[0].UsuarioID)
	assert.Equal(t, "alice", ranking[0].Nome)
	assert.Equal(t, int64(2), ranking[0].TotalFeedbacks)
	require.NotNil(t, ranking[0].NotaMedia)
	assert.InDelta(t, 4.5, *ranking[0].NotaMedia, 0.0001)

	assert.Equal(t, t2.ID, ranking[1].UsuarioID)
	assert.Equal(t, int64(1), ranking[1].TotalFeedbacks)
}

func TestTopRevisoresComLimite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	r1 := criarUsuario(t, db, "carla", usuario.PapelRevisor)
	r2 := criarUsuario(t, db, "diego", usuario.PapelRevisor)
	tq := criarUsuario(t, db, "taquigrafo", usuario.PapelTaquigrafo)

	criarFeedback(t, db, feedback.TipoCorretivo, r1.ID, tq.ID, nil)
	criarFeedback(t, db, feedback.TipoCorretivo, r1.ID, tq.ID, nil)
	criarFeedback(t, db, feedback.TipoCorretivo, r2.ID, tq.ID, nil)

	ranking, err := repo.TopRevisores(db, Janela{}, 1)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.Equal(t, r1.ID, ranking[0].UsuarioID)
	assert.Equal(t, int64(2), ranking[0].TotalFeedbacks)
}

func TestUsoQuesitosSomenteAtivos(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	r := criarUsuario(t, db, "revisora", usuario.PapelRevisor)
	tq := criarUsuario(t, db, "taquigrafo", usuario.PapelTaquigrafo)

	ativo := quesito.Quesito{Titulo: "Grafia", Ativo: true}
	desativado := quesito.Quesito{Titulo: "Aposentado", Ativo: false}
	require.NoError(t, db.Create(&ativo).Error)
	require.NoError(t, db.Create(&desativado).Error)

	f := criarFeedback(t, db, feedback.TipoCorretivo, r.ID, tq.ID, nil)
	require.NoError(t, db.Create(&feedback.FeedbackQuesito{FeedbackID: f.ID, QuesitoID: ativo.ID}).Error)
	require.NoError(t, db.Create(&feedback.FeedbackQuesito{FeedbackID: f.ID, QuesitoID: desativado.ID}).Error)

	uso, err := repo.UsoQuesitos(db, Janela{})
	require.NoError(t, err)
	require.Len(t, uso, 1)
	assert.Equal(t, ativo.ID, uso[0].QuesitoID)
	assert.Equal(t, "Grafia", uso[0].Titulo)
	assert.Equal(t, int64(1), uso[0].TotalUsos)
	assert.Equal(t, int64(1), uso[0].TotalRevisores)
	assert.Equal(t, int64(1), uso[0].TotalTaquigrafos)
}

func TestUsoQuesitosRespeitaJanela(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	agora := time.Now()

	r := criarUsuario(t, db, "revisora", usuario.PapelRevisor)
	tq := criarUsuario(t, db, "taquigrafo", usuario.PapelTaquigrafo)
	q := quesito.Quesito{Titulo: "Grafia", Ativo: true}
	require.NoError(t, db.Create(&q).Error)

	antigo := criarFeedback(t, db, feedback.TipoCorretivo, r.ID, tq.ID, nil)
	require.NoError(t, db.Model(&feedback.Feedback{}).Where("id = ?", antigo.ID).
		UpdateColumn("created_at", agora.AddDate(0, -3, 0)).Error)
	require.NoError(t, db.Create(&feedback.FeedbackQuesito{FeedbackID: antigo.ID, QuesitoID: q.ID}).Error)

	corte := agora.AddDate(0, -1, 0)
	uso, err := repo.UsoQuesitos(db, Janela{Inicio: &corte})
	require.NoError(t, err)
	assert.Empty(t, uso)
}

func TestPorRevisorEPorTaquigrafo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	r := criarUsuario(t, db, "revisora", usuario.PapelRevisor)
	tq := criarUsuario(t, db, "taquigrafo", usuario.PapelTaquigrafo)
	q := quesito.Quesito{Titulo: "Grafia", Ativo: true}
	require.NoError(t, db.Create(&q).Error)

	f1 := criarFeedback(t, db, feedback.TipoCorretivo, r.ID, tq.ID, nil)
	criarFeedback(t, db, feedback.TipoPositivo, r.ID, tq.ID, nil)
	require.NoError(t, db.Model(&feedback.Feedback{}).Where("id = ?", f1.ID).
		Updates(map[string]interface{}{"lido": true}).Error)
	require.NoError(t, db.Create(&feedback.FeedbackQuesito{FeedbackID: f1.ID, QuesitoID: q.ID}).Error)

	doRevisor, err := repo.PorRevisor(db, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), doRevisor.TotalFeedbacks)
	require.Len(t, doRevisor.Quesitos, 1)
	assert.Equal(t, int64(1), doRevisor.Quesitos[0].TotalUsos)
	assert.Equal(t, int64(1), doRevisor.Quesitos[0].TotalTaquigrafos)

	doTaquigrafo, err := repo.PorTaquigrafo(db, tq.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), doTaquigrafo.TotalFeedbacks)
	assert.Equal(t, int64(1), doTaquigrafo.TotalLidos)
	assert.Equal(t, int64(1), doTaquigrafo.TotalNaoLidos)
	require.Len(t, doTaquigrafo.Quesitos, 1)
	assert.Equal(t, int64(1), doTaquigrafo.Quesitos[0].TotalRecebidos)
	assert.Equal(t, int64(1), doTaquigrafo.Quesitos[0].TotalRevisores)
}
