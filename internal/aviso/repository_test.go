package aviso

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/legistaq/api-feedback/internal/usuario"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&usuario.Usuario{}, &Aviso{}, &AvisoLeitura{}, &AvisoVisualizacao{}))
	return db
}

func criarUsuario(t *testing.T, db *gorm.DB, nome string) usuario.Usuario {
	u := usuario.Usuario{Nome: nome, Email: nome + "@camara.test", Senha: "hash", Papel: usuario.PapelTaquigrafo}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestVisivelPara(t *testing.T) {
	agora := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	passado := agora.Add(-time.Hour)
	futuro := agora.Add(time.Hour)

	casos := []struct {
		nome    string
		aviso   Aviso
		papel   string
		visivel bool
	}{
		{"sem destinatários alcança todos", Aviso{Ativo: true, PublicarEm: passado}, usuario.PapelTaquigrafo, true},
		{"sentinela ALL alcança todos", Aviso{Ativo: true, PublicarEm: passado, Destinatarios: []string{DestinatarioTodos}}, usuario.PapelRevisor, true},
		{"papel listado", Aviso{Ativo: true, PublicarEm: passado, Destinatarios: []string{usuario.PapelRevisor}}, usuario.PapelRevisor, true},
		{"papel fora da lista", Aviso{Ativo: true, PublicarEm: passado, Destinatarios: []string{usuario.PapelRevisor}}, usuario.PapelTaquigrafo, false},
		{"inativo nunca aparece", Aviso{Ativo: false, PublicarEm: passado}, usuario.PapelMaster, false},
		{"publicação futura fica oculta", Aviso{Ativo: true, PublicarEm: futuro}, usuario.PapelMaster, false},
	}

	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			assert.Equal(t, caso.visivel, caso.aviso.VisivelPara(caso.papel, agora))
		})
	}
}

func TestListarAtivosExcluiFuturosEInativos(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	agora := time.Now()

	require.NoError(t, repo.Criar(db, &Aviso{Titulo: "Publicado", Ativo: true, PublicarEm: agora.Add(-time.Hour)}))
	require.NoError(t, repo.Criar(db, &Aviso{Titulo: "Agendado", Ativo: true, PublicarEm: agora.Add(time.Hour)}))
	require.NoError(t, repo.Criar(db, &Aviso{Titulo: "Desativado", Ativo: false, PublicarEm: agora.Add(-time.Hour)}))

	avisos, err := repo.ListarAtivos(db, agora)
	require.NoError(t, err)
	require.Len(t, avisos, 1)
	assert.Equal(t, "Publicado", avisos[0].Titulo)
}

func TestMarcarComoLidoRenovaSemDuplicar(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	u := criarUsuario(t, db, "ana")

	a := Aviso{Titulo: "Plantão", Ativo: true, PublicarEm: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Criar(db, &a))

	primeira := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	segunda := primeira.Add(2 * time.Hour)
	require.NoError(t, repo.MarcarComoLido(db, a.ID, u.ID, primeira))
	require.NoError(t, repo.MarcarComoLido(db, a.ID, u.ID, segunda))

	var leituras []AvisoLeitura
	require.NoError(t, db.Find(&leituras).Error)
	require.Len(t, leituras, 1)
	assert.Equal(t, segunda.Unix(), leituras[0].LidoEm.Unix())

	lidos, err := repo.LeiturasDoUsuario(db, u.ID)
	require.NoError(t, err)
	assert.True(t, lidos[a.ID])
}

func TestContagemDeNaoLidos(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	u := criarUsuario(t, db, "ana")
	agora := time.Now()

	avisos := []*Aviso{
		{Titulo: "Geral", Ativo: true, PublicarEm: agora.Add(-time.Hour)},
		{Titulo: "Para revisores", Ativo: true, PublicarEm: agora.Add(-time.Hour), Destinatarios: []string{usuario.PapelRevisor}},
		{Titulo: "Urgente", Ativo: true, PublicarEm: agora.Add(-time.Hour), Tipo: TipoUrgente},
	}
	for _, a := range avisos {
		require.NoError(t, repo.Criar(db, a))
	}
	require.NoError(t, repo.MarcarComoLido(db, avisos[0].ID, u.ID, agora))

	// visível menos lido, pelo papel do usuário
	ativos, err := repo.ListarAtivos(db, agora)
	require.NoError(t, err)
	lidos, err := repo.LeiturasDoUsuario(db, u.ID)
	require.NoError(t, err)

	naoLidos := 0
	for _, a := range ativos {
		if a.VisivelPara(usuario.PapelTaquigrafo, agora) && !lidos[a.ID] {
			naoLidos++
		}
	}
	assert.Equal(t, 1, naoLidos)
}

func TestVisualizacoesSaoAppendOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	ana := criarUsuario(t, db, "ana")
	bia := criarUsuario(t, db, "bia")

	a := Aviso{Titulo: "Plantão", Ativo: true, PublicarEm: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Criar(db, &a))

	require.NoError(t, repo.RegistrarVisualizacao(db, a.ID, ana.ID))
	require.NoError(t, repo.RegistrarVisualizacao(db, a.ID, ana.ID))
	require.NoError(t, repo.RegistrarVisualizacao(db, a.ID, bia.ID))

	stats, err := repo.Estatisticas(db, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalVisualizacoes)
	assert.Equal(t, int64(2), stats.UsuariosUnicos)
	require.Len(t, stats.PorUsuario, 2)

	porNome := map[string]int64{}
	for _, v := range stats.PorUsuario {
		porNome[v.Nome] = v.Total
	}
	assert.Equal(t, int64(2), porNome["ana"])
	assert.Equal(t, int64(1), porNome["bia"])
}

func TestDeletarRemoveLeiturasEVisualizacoes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	u := criarUsuario(t, db, "ana")

	a := Aviso{Titulo: "Plantão", Ativo: true, PublicarEm: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Criar(db, &a))
	require.NoError(t, repo.MarcarComoLido(db, a.ID, u.ID, time.Now()))
	require.NoError(t, repo.RegistrarVisualizacao(db, a.ID, u.ID))

	require.NoError(t, repo.Deletar(db, a.ID))

	var avisos, leituras, visualizacoes int64
	require.NoError(t, db.Model(&Aviso{}).Count(&avisos).Error)
	require.NoError(t, db.Model(&AvisoLeitura{}).Count(&leituras).Error)
	require.NoError(t, db.Model(&AvisoVisualizacao{}).Count(&visualizacoes).Error)
	assert.Zero(t, avisos)
	assert.Zero(t, leituras)
	assert.Zero(t, visualizacoes)
}
