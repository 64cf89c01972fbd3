// internal/app/features/research/templates.go
package research

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "research",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
