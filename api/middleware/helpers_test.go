package middleware

import (
	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
)

func viewer(status enums.UserStatus, admin bool) visibility.Viewer {
	return visibility.Viewer{UserID: uuid.New(), IsAdmin: admin, Status: status}
}
