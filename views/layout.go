package views

import (
	"context"
	"io"
	"strings"
	"time"

	"prompt-cms/models"

	"github.com/a-h/templ"
)

// Page is the data shared by every rendered page.
type Page struct {
	Title     string
	Principal *models.Principal
	IsAdmin   bool
	Notice    string
	Error     string
}

func esc(s string) string {
	return templ.EscapeString(s)
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Format("2006-01-02 15:04")
}

// layout wraps body in the document shell with navigation and flash
// messages.
func layout(page Page, body func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>`)
		b.WriteString(esc(page.Title))
		b.WriteString(` | Prompt Library</title>
  </head>
  <body>
    <nav class="top">
      <a href="/public">Prompt Library</a>`)
		if page.Principal != nil {
			b.WriteString(`
      <a href="/dashboard">Dashboard</a>`)
			if page.IsAdmin {
				b.WriteString(`
      <a href="/admin">Admin</a>`)
			}
			b.WriteString(`
      <form method="post" action="/signout" class="inline"><button type="submit">Sign out `)
			b.WriteString(esc(page.Principal.Name))
			b.WriteString(`</button></form>`)
		} else {
			b.WriteString(`
      <a href="/signin">Sign in</a>`)
		}
		b.WriteString(`
    </nav>
    <main class="shell">`)
		if page.Notice != "" {
			b.WriteString(`
      <p class="notice">`)
			b.WriteString(esc(page.Notice))
			b.WriteString(`</p>`)
		}
		if page.Error != "" {
			b.WriteString(`
      <p class="error">`)
			b.WriteString(esc(page.Error))
			b.WriteString(`</p>`)
		}
		body(&b)
		b.WriteString(`
    </main>
    <script>
      const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws/updates");
      ws.onmessage = (msg) => {
        const event = JSON.parse(msg.data);
        if ((event.paths || []).includes(location.pathname)) {
          document.body.dataset.stale = "true";
        }
      };
    </script>
  </body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeChips(b *strings.Builder, base, param string, names []string) {
	for _, name := range names {
		b.WriteString(`<a class="chip" href="`)
		b.WriteString(esc(base + "?" + param + "=" + name))
		b.WriteString(`">`)
		b.WriteString(esc(name))
		b.WriteString(`</a> `)
	}
}
