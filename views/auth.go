package views

import (
	"strings"

	"prompt-cms/models"

	"github.com/a-h/templ"
)

var signInErrors = map[string]string{
	"unauthorized_email":  "This email address is not authorized to access the application.",
	"admin_access_denied": "Admin access is restricted to authorized administrators.",
}

// SignInError turns a sign-in error code from the query string into a
// message. Unknown codes are shown as given.
func SignInError(code string) string {
	if msg, ok := signInErrors[code]; ok {
		return msg
	}
	return code
}

type SignInData struct {
	Page  Page
	Email string
}

func SignIn(data SignInData) templ.Component {
	data.Page.Title = "Sign in"
	return layout(data.Page, func(b *strings.Builder) {
		b.WriteString(`
      <section class="panel">
        <h1>Sign in</h1>
        <form method="post" action="/signin">
          <input type="email" name="email" placeholder="Email" required value="`)
		b.WriteString(esc(data.Email))
		b.WriteString(`"/>
          <input type="password" name="password" placeholder="Password" required/>
          <button type="submit" class="primary">Sign in</button>
        </form>
      </section>
      <section class="panel">
        <h2>Create an account</h2>
        <form method="post" action="/signup">
          <input type="text" name="full_name" placeholder="Full name"/>
          <input type="email" name="email" placeholder="Email" required/>
          <input type="password" name="password" placeholder="Password (min 6 characters)" minlength="6" required/>
          <button type="submit">Sign up</button>
        </form>
      </section>`)
	})
}

type DashboardData struct {
	Page    Page
	Profile *models.Profile
}

func Dashboard(data DashboardData) templ.Component {
	data.Page.Title = "Dashboard"
	return layout(data.Page, func(b *strings.Builder) {
		name := ""
		avatar := ""
		if data.Profile != nil {
			name = data.Profile.DisplayName
			avatar = data.Profile.AvatarURL
		}
		b.WriteString(`
      <h1>Welcome, `)
		b.WriteString(esc(name))
		b.WriteString(`</h1>
      <form method="post" action="/dashboard/profile" class="panel">
        <input name="display_name" placeholder="Display name" value="`)
		b.WriteString(esc(name))
		b.WriteString(`"/>
        <input name="avatar_url" placeholder="Avatar URL" value="`)
		b.WriteString(esc(avatar))
		b.WriteString(`"/>
        <button type="submit">Save profile</button>
      </form>`)
		if data.Page.IsAdmin {
			b.WriteString(`
      <p><a href="/admin">Manage prompts</a></p>`)
		}
	})
}
