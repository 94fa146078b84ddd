package views

import (
	"strconv"
	"strings"

	"prompt-cms/models"

	"github.com/a-h/templ"
)

type AdminData struct {
	Page       Page
	Stats      *models.DashboardStats
	Filter     models.PromptFilter
	Prompts    *models.PromptPage
	Categories []models.LabelUsage
	Tags       []models.LabelUsage
	// Editing is the prompt shown in the edit form, if any.
	Editing *models.PromptView
}

func Admin(data AdminData) templ.Component {
	data.Page.Title = "Admin"
	return layout(data.Page, func(b *strings.Builder) {
		b.WriteString(`
      <h1>Admin</h1>`)
		if s := data.Stats; s != nil {
			b.WriteString(`
      <section class="stats">`)
			stat(b, "Prompts", s.TotalPrompts)
			stat(b, "Public", s.PublicPrompts)
			stat(b, "Private", s.PrivatePrompts)
			stat(b, "Categories", s.Categories)
			stat(b, "Tags", s.Tags)
			b.WriteString(`</section>`)
		}

		if data.Editing != nil {
			promptForm(b, "/admin/prompts/"+data.Editing.ID, "Edit prompt", data.Editing)
		} else {
			promptForm(b, "/admin/prompts", "New prompt", nil)
		}

		b.WriteString(`
      <section class="panel">
        <h2>Prompts</h2>
        <form method="get" action="/admin">
          <input name="search" placeholder="Search" value="`)
		b.WriteString(esc(data.Filter.Search))
		b.WriteString(`"/>
          <button type="submit">Filter</button>
        </form>
        <form method="post" action="/admin/prompts/bulk">
          <table>
            <thead><tr><th></th><th>Title</th><th>Visibility</th><th>Categories</th><th>Tags</th><th>Updated</th><th></th></tr></thead>
            <tbody>`)
		if data.Prompts != nil {
			for _, p := range data.Prompts.Items {
				visibility := "private"
				if p.IsPublic {
					visibility = "public"
				}
				b.WriteString(`
              <tr>
                <td><input type="checkbox" name="ids" value="`)
				b.WriteString(esc(p.ID))
				b.WriteString(`"/></td>
                <td><a href="/admin?edit=`)
				b.WriteString(esc(p.ID))
				b.WriteString(`">`)
				b.WriteString(esc(p.Title))
				b.WriteString(`</a></td>
                <td>`)
				b.WriteString(visibility)
				b.WriteString(`</td>
                <td>`)
				b.WriteString(esc(strings.Join(p.Categories, ", ")))
				b.WriteString(`</td>
                <td>`)
				b.WriteString(esc(strings.Join(p.Tags, ", ")))
				b.WriteString(`</td>
                <td>`)
				b.WriteString(formatTime(p.UpdatedAt))
				b.WriteString(`</td>
                <td><button type="submit" formaction="/admin/prompts/`)
				b.WriteString(esc(p.ID))
				b.WriteString(`/delete">Delete</button></td>
              </tr>`)
			}
		}
		b.WriteString(`
            </tbody>
          </table>
          <select name="action">
            <option value="publish">Make public</option>
            <option value="unpublish">Make private</option>
            <option value="delete">Delete</option>
          </select>
          <button type="submit">Apply to selected</button>
        </form>`)
		if data.Prompts != nil {
			writePager(b, "/admin", data.Filter, data.Prompts)
		}
		b.WriteString(`
      </section>`)

		labelSection(b, "Categories", "/admin/categories", data.Categories)
		labelSection(b, "Tags", "/admin/tags", data.Tags)
	})
}

func stat(b *strings.Builder, label string, n int64) {
	b.WriteString(`<div class="stat"><span>`)
	b.WriteString(label)
	b.WriteString(`</span><strong>`)
	b.WriteString(strconv.FormatInt(n, 10))
	b.WriteString(`</strong></div>`)
}

func promptForm(b *strings.Builder, action, heading string, p *models.PromptView) {
	var v models.PromptView
	if p != nil {
		v = *p
	}
	b.WriteString(`
      <section class="panel">
        <h2>`)
	b.WriteString(heading)
	b.WriteString(`</h2>
        <form method="post" action="`)
	b.WriteString(esc(action))
	b.WriteString(`">
          <input name="title" placeholder="Title" required maxlength="200" value="`)
	b.WriteString(esc(v.Title))
	b.WriteString(`"/>
          <textarea name="content" placeholder="Prompt content" required maxlength="10000">`)
	b.WriteString(esc(v.Content))
	b.WriteString(`</textarea>
          <input name="description" placeholder="Description" maxlength="500" value="`)
	b.WriteString(esc(v.Description))
	b.WriteString(`"/>
          <input name="category" placeholder="Category" value="`)
	if len(v.Categories) > 0 {
		b.WriteString(esc(v.Categories[0]))
	}
	b.WriteString(`"/>
          <input name="tags" placeholder="tag-one, tag-two" value="`)
	b.WriteString(esc(strings.Join(v.Tags, ", ")))
	b.WriteString(`"/>
          <textarea name="notes" placeholder="Notes" maxlength="2000">`)
	b.WriteString(esc(v.Notes))
	b.WriteString(`</textarea>
          <label><input type="checkbox" name="is_public" value="true"`)
	if v.IsPublic {
		b.WriteString(` checked`)
	}
	b.WriteString(`/> Public</label>
          <button type="submit" class="primary">Save</button>
        </form>
      </section>`)
}

func labelSection(b *strings.Builder, heading, base string, labels []models.LabelUsage) {
	b.WriteString(`
      <section class="panel">
        <h2>`)
	b.WriteString(heading)
	b.WriteString(`</h2>
        <form method="post" action="`)
	b.WriteString(base)
	b.WriteString(`">
          <input name="name" placeholder="Name" required/>
          <input name="description" placeholder="Description"/>
          <button type="submit">Add</button>
        </form>
        <ul>`)
	for _, l := range labels {
		target := base + "/" + l.Name
		b.WriteString(`
          <li>`)
		b.WriteString(esc(l.Name))
		b.WriteString(` <span class="muted">`)
		b.WriteString(strconv.FormatInt(l.Count, 10))
		b.WriteString(` prompts</span>
            <form method="post" action="`)
		b.WriteString(esc(target))
		b.WriteString(`" class="inline">
              <input name="new_name" placeholder="New name" required/>
              <input name="description" placeholder="Description" value="`)
		b.WriteString(esc(l.Description))
		b.WriteString(`"/>
              <button type="submit">Rename</button>
            </form>
            <form method="post" action="`)
		b.WriteString(esc(target + "/delete"))
		b.WriteString(`" class="inline"><button type="submit">Delete</button></form>
          </li>`)
	}
	b.WriteString(`
        </ul>
      </section>`)
}
