package handler

import "html/template"

// Page template names
const (
	pageLanding = "landing"
	pageVerify  = "verify"
	pageHome    = "home"
)

var pages = template.Must(template.New("pages").Parse(`
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<link rel="icon" href="/img/appicon.jpg">
<title>{{.}} | BlackHole</title>
<style>
body{margin:0;font-family:system-ui,sans-serif;background:#0b0b12;color:#eee}
a.button{display:inline-block;padding:12px 24px;margin:10px;border-radius:8px;color:#fff;text-decoration:none;width:200px;text-align:center}
.verify{background:#ff5722}.visit{background:#4caf50}
.center{display:flex;flex-direction:column;align-items:center;justify-content:center;text-align:center;min-height:100vh;padding:20px}
.notice{color:yellow;font-size:15px}
.rail{display:flex;gap:12px;overflow-x:auto;padding:8px 16px}
.card{width:150px;flex:0 0 auto}.card img{width:150px;aspect-ratio:2/3;object-fit:cover;border-radius:6px;background:#222}
.hero{position:relative;height:320px;overflow:hidden}.hero img.bg{width:100%;height:100%;object-fit:cover;opacity:.5}
.hero .info{position:absolute;left:24px;bottom:24px}
h2{padding:0 16px}
</style>
{{if eq . "Checking"}}<meta http-equiv="refresh" content="2">{{end}}
</head>
<body>{{end}}

{{define "foot"}}</body>
</html>{{end}}

{{define "landing"}}{{if eq .State "loading"}}{{template "head" "Checking"}}{{else}}{{template "head" "Welcome"}}{{end}}
<div class="center">
  <h1>Welcome to BlackHole</h1>
  <p>BlackHole is specially designed for middle-class movie lovers. This is affordable entertainment with a vast collection of movies without the financial burden.</p>
  {{if eq .State "entering"}}
  <a class="button visit" href="/index2">Visit HomePage</a>
  {{else if eq .State "finalizing"}}
  <p>Token is verified in DB. Please finalize it...</p>
  <a class="button verify" href="/verification-success">Set Token</a>
  {{else if eq .State "loading"}}
  <p class="notice">Checking token status...</p>
  {{else}}
  <p class="notice">Token not verified. Please verify first.</p>
  <a class="button verify" href="/Verifypage.html">Go to Verify Page</a>
  {{end}}
</div>
{{template "foot"}}{{end}}

{{define "verify"}}{{template "head" "Verify"}}
<div class="center">
  <h1>Verify your device</h1>
  <p>Your device id is <code>{{.DeviceID}}</code>.</p>
  <p>Complete the verification, then come back and press "Set Token".</p>
  <a class="button verify" href="{{.RedirectURL}}" rel="noopener">Start Verification</a>
  <a class="button visit" href="/">Back</a>
</div>
{{template "foot"}}{{end}}

{{define "card"}}<div class="card"><img src="{{.SmPoster}}" alt="{{.Title}}" loading="lazy"><p>{{.Title}}</p></div>{{end}}

{{define "home"}}{{template "head" "Home"}}
<nav style="display:flex;justify-content:space-between;align-items:center;padding:12px 16px">
  <a href="/index2"><img src="/img/appicon.jpg" alt="Logo" height="40"></a>
  <form method="get" action="/index2"><input type="search" name="q" value="{{.Query}}" placeholder="Search movies"></form>
</nav>
<div id="feed-notice" class="notice" style="display:none;padding:0 16px">New movies were published. <a href="/index2">Refresh</a></div>
{{if .Query}}
<h2>Results for "{{.Query}}"</h2>
<div class="rail">{{range .SearchResults}}{{template "card" .}}{{else}}<p>No movies found.</p>{{end}}</div>
{{end}}
{{range .Hero}}
<section class="hero">
  <img class="bg" src="{{.BgPoster}}" alt="{{.Title}}" loading="lazy">
  <div class="info"><img src="{{.SmPoster}}" alt="{{.Title}}" width="120"><h1>{{.Title}}</h1></div>
</section>
{{end}}
<h2>Genres</h2>
<div class="rail">{{range .Genres}}<div class="card"><img src="{{.Image}}" alt="{{.Name}}" loading="lazy"><p>{{.Name}}</p></div>{{end}}</div>
<h2>Newly Released</h2>
<div class="rail">{{range .NewlyReleased}}{{template "card" .}}{{end}}</div>
{{range .GenreSections}}
<h2>{{.Title}}</h2>
<div class="rail">{{range .Movies}}{{template "card" .}}{{else}}<p>Nothing here yet.</p>{{end}}</div>
{{end}}
<script>
(function(){
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var sock = new WebSocket(proto + location.host + "/ws/catalog");
  sock.onmessage = function(){ document.getElementById("feed-notice").style.display = "block"; };
})();
</script>
{{template "foot"}}{{end}}
`))
