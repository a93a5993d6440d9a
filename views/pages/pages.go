// Package pages renders the server's HTML screens as templ components.
package pages

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"simonseq/internal/viewmodel"
)

var tmpl = template.Must(template.New("pages").Parse(layoutHTML + entryHTML + waitingHTML + messageHTML))

// EntryPage renders the splash landing screen or the name/avatar form.
func EntryPage(data viewmodel.EntryPage) templ.Component {
	return component("entry", data)
}

// WaitingPage renders the hand-off screen a player lands on after entry.
func WaitingPage(data viewmodel.WaitingPage) templ.Component {
	return component("waiting", data)
}

// MessagePage renders a short notice with a link back to the start.
func MessagePage(title, message string) templ.Component {
	return component("message", struct {
		Title   string
		Message string
	}{title, message})
}

func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return tmpl.ExecuteTemplate(w, name, data)
	})
}

const layoutHTML = `
{{define "head"}}<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="/static/app.css"/>
  </head>
  <body>
    <main class="shell">{{end}}
{{define "foot"}}
    </main>
  </body>
</html>{{end}}
`

const entryHTML = `
{{define "entry"}}{{template "head" .}}
{{if .ShowForm}}
      <header class="hero">
        <h1>{{if .IsJoin}}Join Game{{else}}Create Game{{end}}</h1>
        {{if .IsJoin}}<p class="code">Game code: <strong>{{.JoinCode}}</strong></p>{{end}}
      </header>
      <form class="panel entry-form" method="post" action="/">
        <input type="hidden" name="join" value="{{.JoinCode}}"/>
        <label for="displayName">Your name</label>
        <input id="displayName" name="displayName" value="{{.DisplayName}}"
          minlength="{{.MinLength}}" maxlength="{{.MaxLength}}" autocomplete="nickname" autofocus/>
        <fieldset class="avatars">
          <legend>Pick an avatar</legend>
          {{range .Avatars}}
          <label class="avatar{{if .Selected}} selected{{end}}" title="{{.Name}}">
            <input type="radio" name="avatarId" value="{{.ID}}"{{if .Selected}} checked{{end}}/>
            <span>{{.Glyph}}</span>
          </label>
          {{end}}
        </fieldset>
        {{if .ErrorMessage}}<p class="error" role="alert">{{.ErrorMessage}}</p>{{end}}
        <button type="submit" class="primary">{{if .IsJoin}}Join Game{{else}}Create Game{{end}}</button>
      </form>
      <script>
        (function () {
          var form = document.querySelector(".entry-form");
          var input = document.getElementById("displayName");
          var button = form.querySelector("button");
          var min = {{.MinLength}};
          function sync() { button.disabled = Array.from(input.value).length < min; }
          input.addEventListener("input", sync);
          form.addEventListener("submit", function () {
            button.disabled = true;
            button.textContent = "Loading...";
          });
          sync();
        })();
      </script>
{{else}}
      <noscript><meta http-equiv="refresh" content="3;url=/?start=1"/></noscript>
      <a class="splash" href="/?start=1">
        <h1>Simon's Sequence</h1>
        <p>Tap to start</p>
      </a>
      <script>
        setTimeout(function () { window.location.replace("/?start=1"); }, {{.SplashMs}});
      </script>
{{end}}
{{template "foot"}}{{end}}
`

const waitingHTML = `
{{define "waiting"}}{{template "head" .}}
      <header class="hero">
        <h1>Waiting Room</h1>
        <p>{{.Glyph}} {{.DisplayName}}{{if .IsHost}} (host){{end}}</p>
      </header>
      <section class="panel">
        <p class="code">Game code: <strong>{{.JoinCode}}</strong></p>
        <p>Share: <a href="{{.ShareURL}}">{{.ShareURL}}</a></p>
        {{if .IsHost}}<img class="qr" src="{{.QRPath}}" alt="QR code for {{.JoinCode}}" width="240" height="240"/>{{end}}
      </section>
      <section class="panel">
        <h2>Players <span id="count">{{len .Players}}</span>/{{.MaxPlayers}}</h2>
        <ul id="roster">
          {{range .Players}}<li{{if .IsSelf}} class="self"{{end}}>{{.Glyph}} {{.Name}}{{if .IsHost}} ★{{end}}</li>{{end}}
        </ul>
        <p id="status" class="status">{{.Status}}</p>
        {{if .IsHost}}<button id="start" class="primary">Start Game</button>{{end}}
      </section>
      <form method="post" action="/logout"><button type="submit" class="secondary">Leave</button></form>
      <script>
        (function () {
          var token = {{.Token}};
          var glyphs = {"1":"🦁","2":"🐯","3":"🦊","4":"🐼","5":"🐸","6":"🦄","7":"🐙","8":"🦋","9":"🐨","10":"🦉"};
          var scheme = location.protocol === "https:" ? "wss://" : "ws://";
          var ws = new WebSocket(scheme + location.host + {{.SocketPath}} + "?token=" + encodeURIComponent(token));
          ws.onmessage = function (ev) {
            var snap = JSON.parse(ev.data);
            var list = document.getElementById("roster");
            list.innerHTML = "";
            (snap.players || []).forEach(function (p) {
              var li = document.createElement("li");
              li.textContent = (glyphs[p.avatarId] || glyphs["1"]) + " " + p.name + (p.isHost ? " ★" : "");
              list.appendChild(li);
            });
            document.getElementById("count").textContent = (snap.players || []).length;
            document.getElementById("status").textContent = snap.status;
          };
          var start = document.getElementById("start");
          if (start) {
            start.addEventListener("click", function () {
              fetch("/api/games/" + {{.JoinCode}} + "/start", {
                method: "POST",
                headers: { "Authorization": "Bearer " + token }
              });
            });
          }
        })();
      </script>
{{template "foot"}}{{end}}
`

const messageHTML = `
{{define "message"}}{{template "head" .}}
      <section class="panel">
        <h1>{{.Title}}</h1>
        <p>{{.Message}}</p>
        <a href="/">Back to start</a>
      </section>
{{template "foot"}}{{end}}
`
