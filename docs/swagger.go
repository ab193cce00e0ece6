// Package docs NoteShelf API
//
// @title  NoteShelf API
// @version 1.0.0
// @description Personal notes with categories and a live change feed.
// @host      localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
package docs

import (
	_ "note-shelf/cmd/server/handlers/httperr"
	_ "note-shelf/internal/services/auth"
	_ "note-shelf/internal/services/notes"
)
