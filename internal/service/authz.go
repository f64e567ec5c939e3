package service

import (
	"github.com/SergeiKhy/shortlinks/internal/models"
)

// Operation операция над ссылкой, для которой проверяются права
type Operation int

const (
	OpViewBasic Operation = iota
	OpViewFull
	OpDelete
)

// Decision результат проверки прав: разрешено ли и в какой форме отдавать данные
type Decision struct {
	Allowed bool
	Shape   models.LinkShape
}

// Authorize чистая функция авторизации, без I/O и без ошибок.
// Админ может всё и видит всё; владелец видит и удаляет своё;
// остальные (включая анонимов) получают только basic-просмотр.
func Authorize(identity *models.Identity, ownerID string, op Operation) Decision {
	if identity != nil && identity.IsAdmin {
		return Decision{Allowed: true, Shape: models.ShapeFull}
	}

	if identity.IsOwner(ownerID) {
		return Decision{Allowed: true, Shape: models.ShapeFull}
	}

	if op == OpDelete {
		return Decision{Allowed: false}
	}

	return Decision{Allowed: true, Shape: models.ShapeBasic}
}
