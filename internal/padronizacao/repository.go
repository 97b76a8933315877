package padronizacao

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JanelaNaoLidos limita a contagem de não lidos a verbetes alterados
// recentemente; verbetes antigos não cobram leitura de ninguém.
const JanelaNaoLidos = 30 * 24 * time.Hour

type Repository interface {
	Criar(db *gorm.DB, p *Padronizacao) error
	ListarTodos(db *gorm.DB) ([]Padronizacao, error)
	BuscarPorID(db *gorm.DB, id uint) (*Padronizacao, error)
	Atualizar(db *gorm.DB, id uint, campos map[string]interface{}) error
	Deletar(db *gorm.DB, id uint) error
	Buscar(db *gorm.DB, consulta string) ([]Padronizacao, error)
	Contar(db *gorm.DB) (int64, error)

	MarcarComoLido(db *gorm.DB, padronizacaoID, usuarioID uint, agora time.Time) error
	MarcarTodosComoLidos(db *gorm.DB, usuarioID uint, agora time.Time) error
	ContarNaoLidos(db *gorm.DB, usuarioID uint, agora time.Time) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Criar(db *gorm.DB, p *Padronizacao) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) ListarTodos(db *gorm.DB) ([]Padronizacao, error) {
	var termos []Padronizacao
	err := db.Preload("Autor").Order("termo asc").Find(&termos).Error
	return termos, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Padronizacao, error) {
	var p Padronizacao
	err := db.Preload("Autor").First(&p, id).Error
	return &p, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, id uint, campos map[string]interface{}) error {
	res := db.Model(&Padronizacao{}).Where("id = ?", id).Updates(campos)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var existe int64
		db.Model(&Padronizacao{}).Where("id = ?", id).Count(&existe)
		if existe == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// Deletar remove o verbete e suas leituras.
func (r *repositoryImpl) Deletar(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("padronizacao_id = ?", id).Delete(&PadronizacaoLeitura{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&Padronizacao{}, id).Error
	})
}

// Buscar faz busca por substring, sem diferenciar maiúsculas, em termo
// e definição.
func (r *repositoryImpl) Buscar(db *gorm.DB, consulta string) ([]Padronizacao, error) {
	padrao := "%" + consulta + "%"
	var termos []Padronizacao
	err := db.Preload("Autor").
		Where("lower(termo) LIKE lower(?) OR lower(definicao) LIKE lower(?)", padrao, padrao).
		Order("termo asc").
		Find(&termos).Error
	return termos, err
}

func (r *repositoryImpl) Contar(db *gorm.DB) (int64, error) {
	var total int64
	err := db.Model(&Padronizacao{}).Count(&total).Error
	return total, err
}

func (r *repositoryImpl) MarcarComoLido(db *gorm.DB, padronizacaoID, usuarioID uint, agora time.Time) error {
	leitura := PadronizacaoLeitura{
		PadronizacaoID: padronizacaoID,
		UsuarioID:      usuarioID,
		LidoEm:         agora,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "padronizacao_id"}, {Name: "usuario_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"lido_em": agora}),
	}).Create(&leitura).Error
}

// MarcarTodosComoLidos registra leitura de todos os verbetes de uma vez.
func (r *repositoryImpl) MarcarTodosComoLidos(db *gorm.DB, usuarioID uint, agora time.Time) error {
	var ids []uint
	if err := db.Model(&Padronizacao{}).Pluck("id", &ids).Error; err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			if err := r.MarcarComoLido(tx, id, usuarioID, agora); err != nil {
				return err
			}
		}
		return nil
	})
}

// ContarNaoLidos conta verbetes alterados dentro da janela de 30 dias e
// ainda sem leitura do usuário. Diferente dos avisos, a garantia aqui é
// limitada no tempo, não desde sempre.
func (r *repositoryImpl) ContarNaoLidos(db *gorm.DB, usuarioID uint, agora time.Time) (int64, error) {
	corte := agora.Add(-JanelaNaoLidos)

	var recentes []uint
	if err := db.Model(&Padronizacao{}).
		Where("updated_at >= ?", corte).
		Pluck("id", &recentes).Error; err != nil {
		return 0, err
	}
	if len(recentes) == 0 {
		return 0, nil
	}

	var lidos []uint
	if err := db.Model(&PadronizacaoLeitura{}).
		Where("usuario_id = ? AND padronizacao_id IN ?", usuarioID, recentes).
		Pluck("padronizacao_id", &lidos).Error; err != nil {
		return 0, err
	}

	return int64(len(recentes) - len(lidos)), nil
}
