package views

import (
	"net/url"
	"strconv"
	"strings"

	"prompt-cms/models"

	"github.com/a-h/templ"
)

type PublicListData struct {
	Page       Page
	Filter     models.PromptFilter
	Prompts    *models.PromptPage
	Categories []models.LabelUsage
	Tags       []models.LabelUsage
}

func PublicList(data PublicListData) templ.Component {
	if data.Page.Title == "" {
		data.Page.Title = "Public prompts"
	}
	return layout(data.Page, func(b *strings.Builder) {
		b.WriteString(`
      <header class="hero"><h1>Public prompts</h1></header>
      <form method="get" action="/public" class="search">
        <input name="search" placeholder="Search prompts" value="`)
		b.WriteString(esc(data.Filter.Search))
		b.WriteString(`"/>
        <button type="submit">Search</button>
      </form>
      <section class="filters">`)
		for _, c := range data.Categories {
			b.WriteString(`<a class="chip" href="/public?category=`)
			b.WriteString(esc(url.QueryEscape(c.Name)))
			b.WriteString(`">`)
			b.WriteString(esc(c.Name))
			b.WriteString(` (`)
			b.WriteString(strconv.FormatInt(c.Count, 10))
			b.WriteString(`)</a> `)
		}
		for _, t := range data.Tags {
			b.WriteString(`<a class="chip tag" href="/public?tag=`)
			b.WriteString(esc(url.QueryEscape(t.Name)))
			b.WriteString(`">#`)
			b.WriteString(esc(t.Name))
			b.WriteString(`</a> `)
		}
		b.WriteString(`</section>`)

		if data.Prompts == nil || len(data.Prompts.Items) == 0 {
			b.WriteString(`
      <p class="empty">No prompts found.</p>`)
			return
		}
		b.WriteString(`
      <ul class="prompts">`)
		for _, p := range data.Prompts.Items {
			b.WriteString(`
        <li><a href="/prompt/`)
			b.WriteString(esc(p.ID))
			b.WriteString(`">`)
			b.WriteString(esc(p.Title))
			b.WriteString(`</a>`)
			if p.Description != "" {
				b.WriteString(` <span class="muted">`)
				b.WriteString(esc(p.Description))
				b.WriteString(`</span>`)
			}
			b.WriteString(` `)
			writeChips(b, "/public", "category", p.Categories)
			writeChips(b, "/public", "tag", p.Tags)
			b.WriteString(`</li>`)
		}
		b.WriteString(`
      </ul>`)
		writePager(b, "/public", data.Filter, data.Prompts)
	})
}

func PromptDetail(page Page, prompt models.PromptView) templ.Component {
	page.Title = prompt.Title
	return layout(page, func(b *strings.Builder) {
		b.WriteString(`
      <article class="prompt">
        <h1>`)
		b.WriteString(esc(prompt.Title))
		b.WriteString(`</h1>
        <p class="muted">by `)
		author := prompt.AuthorName
		if author == "" {
			author = prompt.Author
		}
		b.WriteString(esc(author))
		b.WriteString(` &middot; updated `)
		b.WriteString(formatTime(prompt.UpdatedAt))
		b.WriteString(`</p>`)
		if prompt.Description != "" {
			b.WriteString(`
        <p>`)
			b.WriteString(esc(prompt.Description))
			b.WriteString(`</p>`)
		}
		b.WriteString(`
        <pre class="content">`)
		b.WriteString(esc(prompt.Content))
		b.WriteString(`</pre>
        <p>`)
		writeChips(b, "/public", "category", prompt.Categories)
		writeChips(b, "/public", "tag", prompt.Tags)
		b.WriteString(`</p>
      </article>`)
	})
}

func NotFound(page Page) templ.Component {
	page.Title = "Not found"
	return layout(page, func(b *strings.Builder) {
		b.WriteString(`
      <h1>Not found</h1>
      <p><a href="/public">Back to prompts</a></p>`)
	})
}

func writePager(b *strings.Builder, base string, filter models.PromptFilter, page *models.PromptPage) {
	if page.Limit <= 0 || page.Total <= int64(page.Limit) {
		return
	}
	link := func(n int, label string) {
		q := url.Values{}
		if filter.Search != "" {
			q.Set("search", filter.Search)
		}
		if filter.Category != "" {
			q.Set("category", filter.Category)
		}
		if filter.Tag != "" {
			q.Set("tag", filter.Tag)
		}
		q.Set("page", strconv.Itoa(n))
		b.WriteString(`<a href="`)
		b.WriteString(esc(base + "?" + q.Encode()))
		b.WriteString(`">`)
		b.WriteString(label)
		b.WriteString(`</a> `)
	}
	b.WriteString(`
      <nav class="pager">`)
	if page.Page > 1 {
		link(page.Page-1, "Previous")
	}
	if int64(page.Page*page.Limit) < page.Total {
		link(page.Page+1, "Next")
	}
	b.WriteString(`</nav>`)
}
