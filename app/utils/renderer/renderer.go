package renderer

import (
	"html/template"
	"strings"

	"github.com/Rakhulsr/go-tours/app/utils/format"
	"github.com/unrolled/render"
)

type Options struct {
	// Directory holds the page templates; "templates" when empty.
	Directory string
	// Development reloads templates on every render.
	Development bool
}

func New(opts Options) *render.Render {
	dir := opts.Directory
	if dir == "" {
		dir = "templates"
	}

	return render.New(render.Options{
		Directory:     dir,
		Layout:        "layout",
		Extensions:    []string{".html"},
		IsDevelopment: opts.Development,
		Funcs: []template.FuncMap{
			{
				"formatPrice": format.Price,
				"formatDate":  format.Date,
				"upper":       strings.ToUpper,
				"firstName": func(name string) string {
					if fields := strings.Fields(name); len(fields) > 0 {
						return fields[0]
					}
					return name
				},
				"until": func(count int) []int {
					items := make([]int, count)
					for i := 0; i < count; i++ {
						items[i] = i
					}
					return items
				},
				"add": func(a, b int) int { return a + b },
			},
		},
	})
}
