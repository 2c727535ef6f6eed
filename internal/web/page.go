package web

import (
	"html/template"
	"strings"
)

// shortcutURL lets deep links through html/template, which otherwise rewrites
// any scheme besides http, https and mailto. Only links built by
// sleepcycle.ShortcutURL are passed in.
func shortcutURL(s string) template.URL {
	if !strings.HasPrefix(s, "shortcuts://") {
		return template.URL("#")
	}
	return template.URL(s)
}

var pageFuncs = template.FuncMap{"shortcutURL": shortcutURL}

const pageHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>remcalc</title>
  {{if .ShareDescription}}
  <meta name="description" content="{{.ShareDescription}}">
  <meta property="og:description" content="{{.ShareDescription}}">
  {{end}}
  <style>
    body { font-family: system-ui, sans-serif; margin: 0; padding: 24px; max-width: 640px; box-sizing: border-box; background: #0a1930; color: #fff; }
    * { box-sizing: border-box; }
    h2 { margin-top: 0; font-weight: 600; }
    a { color: #3fa9f5; }
    .err { color: #ffcdd2; margin: 12px 0; padding: 10px; background: rgba(176,0,32,0.35); border-radius: 10px; }
    .warn { color: #f5a623; margin-top: 10px; font-size: 0.9em; }
    .card { border: 1px solid rgba(255,255,255,0.08); border-radius: 14px; padding: 16px; margin: 16px 0; background: rgba(16,42,67,0.95); }
    .muted { color: #9fb3c8; }
    .field { display: flex; align-items: center; gap: 12px; flex-wrap: wrap; }
    .field label.title { min-width: 150px; font-weight: 500; }
    .field input[type="text"] { padding: 8px 10px; font-size: 1em; border: 1px solid rgba(255,255,255,0.18); border-radius: 14px; width: 100px; background: rgba(255,255,255,0.06); color: #fff; }
    .field input:focus { outline: none; border-color: #3fa9f5; }
    a.btn { text-decoration: none; }
    .btn { padding: 6px 12px; font-size: 0.9em; background: rgba(255,255,255,0.06); color: #fff; border: 1px solid rgba(255,255,255,0.18); border-radius: 14px; cursor: pointer; }
    .chips { display: flex; gap: 6px; }
    .chips input { display: none; }
    .chips label { padding: 6px 12px; border-radius: 14px; border: 1px solid rgba(255,255,255,0.18); cursor: pointer; }
    .chips input:checked + label { background: #3fa9f5; border-color: #3fa9f5; }
    .range { flex: 1; display: flex; align-items: center; gap: 8px; min-width: 220px; }
    .range input { flex: 1; }
    .item { display: flex; justify-content: space-between; align-items: center; padding: 12px 0; border-top: 1px solid rgba(255,255,255,0.08); }
    .item:first-of-type { border-top: none; }
    .time { font-size: 1.8em; font-weight: 600; font-variant-numeric: tabular-nums; }
    .meta { color: #9fb3c8; font-size: 0.9em; }
    .pill { padding: 4px 10px; border-radius: 999px; font-size: 0.9em; text-decoration: none; }
    .pill-darkblue { background: #102a43; color: #fff; }
    .pill-blue { background: #3fa9f5; color: #fff; }
    .row { display: flex; gap: 8px; align-items: center; }
    .info { background: none; border: none; cursor: pointer; font-size: 1em; }
    .modal { position: fixed; inset: 0; background: rgba(0,0,0,0.5); display: none; align-items: center; justify-content: center; z-index: 1000; }
    .modal.open { display: flex; }
    .modal-content { position: relative; background: #102a43; border-radius: 14px; padding: 20px 24px; max-width: 420px; }
    .close-cross { position: absolute; top: 10px; right: 14px; cursor: pointer; }
    .fortune-text { font-style: italic; text-align: center; }
    .form-actions { margin-top: 12px; }
    button[type="submit"] { padding: 10px 20px; font-size: 1em; font-weight: 500; background: #3fa9f5; color: #fff; border: none; border-radius: 14px; cursor: pointer; }
    footer { margin-top: 40px; color: #9fb3c8; font-size: 0.9em; text-align: center; }
  </style>
</head>
<body>
  <form method="POST" action="/calc">
    <div class="card">
      <div class="field">
        <label class="title" for="start">Sleep start</label>
        <input id="start" name="start" type="text" value="{{.Start}}" placeholder="22:30" pattern="[0-9]{1,2}:[0-9]{2}" required autocomplete="off">
        <button type="button" class="btn" id="set-now">Set to now</button>
      </div>
    </div>

    <div class="card">
      <div class="field">
        <span class="title">Time to fall asleep</span>
        <div class="chips">
          {{range .Chips}}
          <input type="radio" id="latency-{{.Value}}" name="latency" value="{{.Value}}"{{if .Active}} checked{{end}}>
          <label for="latency-{{.Value}}">{{.Value}}</label>
          {{end}}
        </div>
        <span class="muted">min</span>
      </div>
    </div>

    <div class="card">
      <div class="field">
        <label class="title" for="min_sleep">Minimum sleep</label>
        <div class="range">
          <span class="muted">0h</span>
          <input id="min_sleep" name="min_sleep" type="range" min="0" max="12" step="0.5" value="{{.MinSleep}}">
          <span class="muted">12h</span>
          <output id="min_sleep_out" for="min_sleep">{{.MinSleep}}h</output>
        </div>
      </div>
      <div class="form-actions row">
        <button type="submit">Calculate</button>
        <a class="btn" id="reset" href="/?start={{.Start}}">Reset</a>
      </div>
    </div>
  </form>

  {{if .Error}}<div class="err">{{.Error}}</div>{{end}}

  {{with .Report}}
  <div class="card">
    <div class="row">
      <span><b>Calculated alarms</b></span>
      <button type="button" class="info" id="info-open" aria-label="How to install the Shortcut">ℹ️</button>
    </div>
    {{range .Alarms}}
    <div class="item">
      <div>
        <div class="time">{{.Wake}}</div>
        <div class="meta">{{.Cycles}} × 90m cycles</div>
      </div>
      <div class="row">
        <span class="pill pill-darkblue">{{.TotalSleep}}</span>
        <a class="pill pill-blue" href="{{shortcutURL .ShortcutURL}}">Set ⏰</a>
      </div>
    </div>
    {{end}}
    {{if not .MinimumMet}}<div class="warn">No option reaches the minimum; showing the longest.</div>{{end}}
  </div>
  {{end}}

  {{if .FortuneEnabled}}
  <div class="card">
    <div class="fortune-text muted" id="fortune">Loading a fortune…</div>
  </div>
  {{end}}

  <div id="info-modal" class="modal" role="dialog" aria-modal="true">
    <div class="modal-content">
      <h3>Enable Shortcut Alarms</h3>
      <ol>
        <li>{{if .InstallURL}}<a href="{{.InstallURL}}" target="_blank" rel="noopener noreferrer">Install the alarm Shortcut</a>{{else}}Install the alarm Shortcut{{end}} on your phone.</li>
        <li>In iOS: go to <b>Settings → Shortcuts → Allow Untrusted Shortcuts</b>.</li>
        <li>After that, the ⏰ buttons here will open your Clock app and set alarms.</li>
      </ol>
      <span class="close-cross" id="info-close" aria-label="Close">✖️</span>
    </div>
  </div>

  <script>
(function() {
  function pad2(n) { return (n < 10 ? '0' : '') + n; }

  var start = document.getElementById('start');
  document.getElementById('set-now').addEventListener('click', function() {
    var d = new Date();
    start.value = pad2(d.getHours()) + ':' + pad2(d.getMinutes());
  });

  var slider = document.getElementById('min_sleep');
  var out = document.getElementById('min_sleep_out');
  slider.addEventListener('input', function() { out.textContent = slider.value + 'h'; });

  var modal = document.getElementById('info-modal');
  var open = document.getElementById('info-open');
  if (open) open.addEventListener('click', function() { modal.classList.add('open'); });
  document.getElementById('info-close').addEventListener('click', function() { modal.classList.remove('open'); });
  modal.addEventListener('click', function(e) { if (e.target === modal) modal.classList.remove('open'); });

  var fortune = document.getElementById('fortune');
  if (fortune) {
    fetch('/api/fortune', { cache: 'no-store' })
      .then(function(r) { return r.json(); })
      .then(function(f) {
        fortune.textContent = '“' + f.text + '”';
        fortune.classList.remove('muted');
      })
      .catch(function() { fortune.textContent = ''; });
  }
})();
  </script>

  <footer>remcalc v{{.Version}}</footer>
</body>
</html>`
