package comentario

import (
	"errors"

	"gorm.io/gorm"
)

// Resultado do toggle de reação.
const (
	AcaoAdicionada = "added"
	AcaoRemovida   = "removed"
)

type Repository interface {
	Criar(db *gorm.DB, c *Comentario) error
	ListarPorFeedback(db *gorm.DB, feedbackID uint) ([]Comentario, error)
	Deletar(db *gorm.DB, id, solicitanteID uint) (int64, error)
	Existe(db *gorm.DB, id uint) (bool, error)

	AlternarReacao(db *gorm.DB, feedbackID, usuarioID uint, tipo string) (string, error)
	ListarReacoes(db *gorm.DB, feedbackID uint) ([]Reacao, error)
	ContarReacoes(db *gorm.DB, feedbackID uint) (map[string]int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Criar(db *gorm.DB, c *Comentario) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) ListarPorFeedback(db *gorm.DB, feedbackID uint) ([]Comentario, error) {
	var comentarios []Comentario
	err := db.Preload("Usuario").
		Where("feedback_id = ?", feedbackID).
		Order("created_at desc").
		Find(&comentarios).Error
	return comentarios, err
}

// Deletar remove o comentário apenas quando o solicitante é o autor e
// devolve o número de linhas afetadas para o chamador decidir o que
// reportar.
func (r *repositoryImpl) Deletar(db *gorm.DB, id, solicitanteID uint) (int64, error) {
	res := db.Where("id = ? AND usuario_id = ?", id, solicitanteID).Delete(&Comentario{})
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) Existe(db *gorm.DB, id uint) (bool, error) {
	var total int64
	err := db.Model(&Comentario{}).Where("id = ?", id).Count(&total).Error
	return total > 0, err
}

// AlternarReacao remove a reação se ela já existe e cria caso contrário.
// O índice único (feedback, usuário, tipo) garante que dois toggles
// idênticos concorrentes nunca resultem em duas inserções.
func (r *repositoryImpl) AlternarReacao(db *gorm.DB, feedbackID, usuarioID uint, tipo string) (string, error) {
	res := db.Where("feedback_id = ? AND usuario_id = ? AND tipo = ?", feedbackID, usuarioID, tipo).
		Delete(&Reacao{})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected > 0 {
		return AcaoRemovida, nil
	}

	reacao := Reacao{FeedbackID: feedbackID, UsuarioID: usuarioID, Tipo: tipo}
	if err := db.Create(&reacao).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// outro toggle idêntico venceu a corrida
			return AcaoAdicionada, nil
		}
		return "", err
	}
	return AcaoAdicionada, nil
}

func (r *repositoryImpl) ListarReacoes(db *gorm.DB, feedbackID uint) ([]Reacao, error) {
	var reacoes []Reacao
	err := db.Preload("Usuario").
		Where("feedback_id = ?", feedbackID).
		Order("created_at desc").
		Find(&reacoes).Error
	return reacoes, err
}

// ContarReacoes devolve sempre os três tipos, com zero como padrão.
func (r *repositoryImpl) ContarReacoes(db *gorm.DB, feedbackID uint) (map[string]int64, error) {
	contagens := make(map[string]int64, len(TiposDeReacao))
	for _, t := range TiposDeReacao {
		contagens[t] = 0
	}

	var linhas []struct {
		Tipo  string
		Total int64
	}
	err := db.Model(&Reacao{}).
		Select("tipo, count(*) as total").
		Where("feedback_id = ?", feedbackID).
		Group("tipo").
		Find(&linhas).Error
	if err != nil {
		return nil, err
	}
	for _, l := range linhas {
		contagens[l.Tipo] = l.Total
	}
	return contagens, nil
}
