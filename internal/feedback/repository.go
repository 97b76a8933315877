package feedback

import (
	"time"

	"gorm.io/gorm"

	"github.com/legistaq/api-feedback/internal/comentario"
	"github.com/legistaq/api-feedback/internal/usuario"
)

// Filtros de listagem; campos zerados não filtram.
type Filtros struct {
	Tipo   string
	Lido   *bool
	Inicio *time.Time
	Fim    *time.Time
	Busca  string
}

type Repository interface {
	CriarComQuesitos(db *gorm.DB, f *Feedback, entradas []FeedbackQuesito) error
	BuscarPorID(db *gorm.DB, id uint) (*Feedback, error)
	Listar(db *gorm.DB, escopo Escopo, filtros Filtros) ([]Feedback, error)
	MarcarComoLido(db *gorm.DB, id uint, agora time.Time) error
	Atualizar(db *gorm.DB, id uint, campos map[string]interface{}) error
	SubstituirQuesitos(db *gorm.DB, feedbackID uint, entradas []FeedbackQuesito) error
	Deletar(db *gorm.DB, id uint) error
	ContarPorUsuario(db *gorm.DB, usuarioID uint, papel string) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// CriarComQuesitos grava o feedback e suas entradas como uma unidade
// atômica: ou tudo entra, ou nada entra.
func (r *repositoryImpl) CriarComQuesitos(db *gorm.DB, f *Feedback, entradas []FeedbackQuesito) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Quesitos", "Revisor", "Taquigrafo").Create(f).Error; err != nil {
			return err
		}
		for i := range entradas {
			entradas[i].FeedbackID = f.ID
		}
		if len(entradas) > 0 {
			if err := tx.Create(&entradas).Error; err != nil {
				return err
			}
		}
		f.Quesitos = entradas
		return nil
	})
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Feedback, error) {
	var f Feedback
	err := db.Preload("Revisor").
		Preload("Taquigrafo").
		Preload("Quesitos", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordem asc")
		}).
		Preload("Quesitos.Quesito").
		First(&f, id).Error
	return &f, err
}

// Listar aplica o escopo de visibilidade e os filtros sobre uma única
// consulta genérica, ordenada do mais recente para o mais antigo.
func (r *repositoryImpl) Listar(db *gorm.DB, escopo Escopo, filtros Filtros) ([]Feedback, error) {
	q := escopo(db.Model(&Feedback{}))

	if filtros.Tipo != "" {
		q = q.Where("tipo = ?", filtros.Tipo)
	}
	if filtros.Lido != nil {
		q = q.Where("lido = ?", *filtros.Lido)
	}
	if filtros.Inicio != nil {
		q = q.Where("created_at >= ?", *filtros.Inicio)
	}
	if filtros.Fim != nil {
		q = q.Where("created_at <= ?", *filtros.Fim)
	}
	if filtros.Busca != "" {
		padrao := "%" + filtros.Busca + "%"
		q = q.Where(
			"lower(titulo) LIKE lower(?) OR lower(conteudo) LIKE lower(?) OR lower(numero_sessao) LIKE lower(?)",
			padrao, padrao, padrao,
		)
	}

	var feedbacks []Feedback
	err := q.Preload("Revisor").
		Preload("Taquigrafo").
		Preload("Quesitos", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordem asc")
		}).
		Preload("Quesitos.Quesito").
		Order("created_at desc").
		Find(&feedbacks).Error
	return feedbacks, err
}

// MarcarComoLido é idempotente: só a primeira chamada grava lido_em;
// as seguintes não afetam linha alguma.
func (r *repositoryImpl) MarcarComoLido(db *gorm.DB, id uint, agora time.Time) error {
	var existe int64
	if err := db.Model(&Feedback{}).Where("id = ?", id).Count(&existe).Error; err != nil {
		return err
	}
	if existe == 0 {
		return gorm.ErrRecordNotFound
	}

	return db.Model(&Feedback{}).
		Where("id = ? AND lido = ?", id, false).
		Updates(map[string]interface{}{"lido": true, "lido_em": agora}).Error
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, id uint, campos map[string]interface{}) error {
	var existe int64
	if err := db.Model(&Feedback{}).Where("id = ?", id).Count(&existe).Error; err != nil {
		return err
	}
	if existe == 0 {
		return gorm.ErrRecordNotFound
	}
	if len(campos) == 0 {
		return nil
	}
	return db.Model(&Feedback{}).Where("id = ?", id).Updates(campos).Error
}

// SubstituirQuesitos troca o conjunto inteiro de entradas em uma única
// transação: remove tudo e recria. O contrato de atomicidade da edição
// mora somente aqui.
func (r *repositoryImpl) SubstituirQuesitos(db *gorm.DB, feedbackID uint, entradas []FeedbackQuesito) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("feedback_id = ?", feedbackID).Delete(&FeedbackQuesito{}).Error; err != nil {
			return err
		}
		for i := range entradas {
			entradas[i].ID = 0
			entradas[i].FeedbackID = feedbackID
		}
		if len(entradas) > 0 {
			if err := tx.Create(&entradas).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Deletar remove o feedback e arrasta entradas, comentários e reações.
func (r *repositoryImpl) Deletar(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("feedback_id = ?", id).Delete(&FeedbackQuesito{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("feedback_id = ?", id).Delete(&comentario.Comentario{}).Error; err != nil {
			return err
		}
		if err := tx.Where("feedback_id = ?", id).Delete(&comentario.Reacao{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Feedback{}, id).Error
	})
}

// ContarPorUsuario conta enviados para revisores e recebidos para os
// demais papéis.
func (r *repositoryImpl) ContarPorUsuario(db *gorm.DB, usuarioID uint, papel string) (int64, error) {
	var total int64
	coluna := "taquigrafo_id"
	if papel == usuario.PapelRevisor {
		coluna = "revisor_id"
	}
	err := db.Model(&Feedback{}).Where(coluna+" = ?", usuarioID).Count(&total).Error
	return total, err
}
