package aviso

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VisualizacaoPorUsuario é a linha do detalhamento de telemetria.
type VisualizacaoPorUsuario struct {
	UsuarioID          uint      `json:"usuarioId"`
	Nome               string    `json:"nome"`
	Total              int64     `json:"total"`
	UltimaVisualizacao time.Time `json:"ultimaVisualizacao"`
}

// EstatisticasVisualizacao agrega o log de visualizações de um aviso.
type EstatisticasVisualizacao struct {
	TotalVisualizacoes int64                    `json:"totalVisualizacoes"`
	UsuariosUnicos     int64                    `json:"usuariosUnicos"`
	PorUsuario         []VisualizacaoPorUsuario `json:"porUsuario"`
}

type Repository interface {
	Criar(db *gorm.DB, a *Aviso) error
	ListarAtivos(db *gorm.DB, agora time.Time) ([]Aviso, error)
	BuscarPorID(db *gorm.DB, id uint) (*Aviso, error)
	Atualizar(db *gorm.DB, id uint, campos map[string]interface{}) error
	Deletar(db *gorm.DB, id uint) error

	MarcarComoLido(db *gorm.DB, avisoID, usuarioID uint, agora time.Time) error
	LeiturasDoUsuario(db *gorm.DB, usuarioID uint) (map[uint]bool, error)

	RegistrarVisualizacao(db *gorm.DB, avisoID, usuarioID uint) error
	Estatisticas(db *gorm.DB, avisoID uint) (*EstatisticasVisualizacao, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Criar(db *gorm.DB, a *Aviso) error {
	return db.Create(a).Error
}

func (r *repositoryImpl) ListarAtivos(db *gorm.DB, agora time.Time) ([]Aviso, error) {
	var avisos []Aviso
	err := db.Preload("Autor").
		Where("ativo = ? AND publicar_em <= ?", true, agora).
		Order("created_at desc").
		Find(&avisos).Error
	return avisos, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Aviso, error) {
	var a Aviso
	err := db.Preload("Autor").First(&a, id).Error
	return &a, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, id uint, campos map[string]interface{}) error {
	res := db.Model(&Aviso{}).Where("id = ?", id).Updates(campos)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var existe int64
		db.Model(&Aviso{}).Where("id = ?", id).Count(&existe)
		if existe == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// Deletar remove o aviso com suas leituras e visualizações.
func (r *repositoryImpl) Deletar(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("aviso_id = ?", id).Delete(&AvisoLeitura{}).Error; err != nil {
			return err
		}
		if err := tx.Where("aviso_id = ?", id).Delete(&AvisoVisualizacao{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Aviso{}, id).Error
	})
}

// MarcarComoLido faz upsert na chave (aviso, usuário): a primeira chamada
// insere, as seguintes só renovam o timestamp.
func (r *repositoryImpl) MarcarComoLido(db *gorm.DB, avisoID, usuarioID uint, agora time.Time) error {
	leitura := AvisoLeitura{AvisoID: avisoID, UsuarioID: usuarioID, LidoEm: agora}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "aviso_id"}, {Name: "usuario_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"lido_em": agora}),
	}).Create(&leitura).Error
}

func (r *repositoryImpl) LeiturasDoUsuario(db *gorm.DB, usuarioID uint) (map[uint]bool, error) {
	var ids []uint
	err := db.Model(&AvisoLeitura{}).
		Where("usuario_id = ?", usuarioID).
		Pluck("aviso_id", &ids).Error
	if err != nil {
		return nil, err
	}
	lidos := make(map[uint]bool, len(ids))
	for _, id := range ids {
		lidos[id] = true
	}
	return lidos, nil
}

// RegistrarVisualizacao sempre insere; o log é append-only.
func (r *repositoryImpl) RegistrarVisualizacao(db *gorm.DB, avisoID, usuarioID uint) error {
	return db.Create(&AvisoVisualizacao{AvisoID: avisoID, UsuarioID: usuarioID}).Error
}

func (r *repositoryImpl) Estatisticas(db *gorm.DB, avisoID uint) (*EstatisticasVisualizacao, error) {
	stats := &EstatisticasVisualizacao{PorUsuario: []VisualizacaoPorUsuario{}}

	if err := db.Model(&AvisoVisualizacao{}).
		Where("aviso_id = ?", avisoID).
		Count(&stats.TotalVisualizacoes).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&AvisoVisualizacao{}).
		Where("aviso_id = ?", avisoID).
		Distinct("usuario_id").
		Count(&stats.UsuariosUnicos).Error; err != nil {
		return nil, err
	}

	err := db.Model(&AvisoVisualizacao{}).
		Select("aviso_visualizacaos.usuario_id, usuarios.nome, count(*) as total, max(aviso_visualizacaos.visualizado_em) as ultima_visualizacao").
		Joins("LEFT JOIN usuarios ON usuarios.id = aviso_visualizacaos.usuario_id").
		Where("aviso_visualizacaos.aviso_id = ?", avisoID).
		Group("aviso_visualizacaos.usuario_id, usuarios.nome").
		Find(&stats.PorUsuario).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
