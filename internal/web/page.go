package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"releaseday/internal/countdown"
	"releaseday/internal/share"
)

type PageData struct {
	Title      string
	Subtitle   string
	Motivation string
	Celebrate  string

	Finished bool
	Cells    []countdown.Cell

	Share            share.Payload
	ShareDescription string

	Version string
}

func PageModule(s *Server) Module {
	return ModuleFunc(func(c *Controller) {
		c.Handle(http.MethodGet, "/", s.servePage)
	})
}

func (s *Server) servePage(ctx *gin.Context) {
	now := s.opts.Clock.Now()
	state := s.opts.Target.Compute(now)
	l := s.opts.Labels

	data := PageData{
		Title:            l.Title,
		Subtitle:         l.Subtitle,
		Motivation:       l.Motivation,
		Celebrate:        l.Celebrate,
		Finished:         countdown.IsFinished(state),
		Cells:            countdown.Remaining{}.Cells(),
		Share:            s.sharePayload(requestURL(ctx.Request)),
		ShareDescription: share.Description(state, s.opts.Target, l.Celebrate),
		Version:          s.opts.Version,
	}
	if c, ok := state.(countdown.Counting); ok {
		data.Cells = c.Remaining.Cells()
	}

	ctx.HTML(http.StatusOK, "page", data)
}

const pageHTML = `<!doctype html>
<html lang="ar" dir="rtl">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Share.Title}}</title>
  <meta name="description" content="{{.ShareDescription}}">
  <meta property="og:title" content="{{.Share.Title}}">
  <meta property="og:description" content="{{.ShareDescription}}">
  <style>
    :root { --bg: #fdfbff; --fg: #1d1b26; --muted: #6b6780; --card: #ffffff; --accent: #7c3aed; }
    html.dark { --bg: #13111c; --fg: #f4f2ff; --muted: #a29fb5; --card: #1f1c2c; --accent: #a78bfa; }
    * { box-sizing: border-box; }
    body { margin: 0; min-height: 100vh; display: flex; align-items: center; justify-content: center; padding: 16px;
           font-family: system-ui, sans-serif; background: var(--bg); color: var(--fg); text-align: center; }
    main { max-width: 960px; width: 100%; }
    h1 { font-size: clamp(1.6rem, 4vw, 2.8rem); margin: 0 0 12px; color: var(--accent); }
    .sub { color: var(--muted); margin-bottom: 40px; }
    .grid { display: grid; grid-template-columns: repeat(4, 1fr); gap: 16px; margin-bottom: 32px; }
    @media (max-width: 640px) { .grid { grid-template-columns: repeat(2, 1fr); } }
    .cell { background: var(--card); border-radius: 16px; padding: 20px 8px; box-shadow: 0 4px 20px rgba(0,0,0,0.08); }
    .num { font-size: clamp(2rem, 6vw, 3.6rem); font-weight: 700; font-variant-numeric: tabular-nums; }
    .label { color: var(--muted); margin-top: 6px; }
    .party { font-size: clamp(1.8rem, 5vw, 3.2rem); font-weight: 700; margin-bottom: 32px; }
    .actions { display: flex; gap: 16px; justify-content: center; flex-wrap: wrap; }
    button { padding: 12px 24px; font-size: 1em; border: none; border-radius: 999px; background: var(--accent); color: #fff; cursor: pointer; }
    .theme { position: fixed; top: 16px; left: 16px; background: var(--card); color: var(--fg); }
    .toast { position: fixed; bottom: 24px; left: 50%; transform: translateX(-50%); background: var(--fg); color: var(--bg);
             padding: 10px 18px; border-radius: 8px; opacity: 0; transition: opacity .3s; }
    .toast.show { opacity: 1; }
    footer { margin-top: 40px; color: var(--muted); font-size: 0.8em; }
    [hidden] { display: none !important; }
  </style>
</head>
<body>
  <button type="button" class="theme" id="theme" aria-label="theme">🌓</button>
  <main>
    <section id="counting"{{if .Finished}} hidden{{end}}>
      <h1>{{.Title}}</h1>
      <p class="sub">{{.Subtitle}}</p>
      <div class="grid">
        {{range .Cells}}
        <div class="cell">
          <div class="num" data-unit="{{.Unit}}">{{.Value}}</div>
          <div class="label">{{.Label}}</div>
        </div>
        {{end}}
      </div>
      <p class="sub">{{.Motivation}}</p>
    </section>

    <section id="finished"{{if not .Finished}} hidden{{end}}>
      <div class="party">{{.Celebrate}}</div>
      <div class="actions">
        <button type="button" id="share">📱 مشاركة الخبر السار</button>
        <button type="button" id="copy">📋 نسخ النص</button>
      </div>
    </section>
    <footer>releaseday v{{.Version}}</footer>
  </main>
  <div class="toast" id="toast" role="status"></div>

  <script>
(function() {
  var share = {{.Share}};
  var root = document.documentElement;
  var toastEl = document.getElementById('toast');

  function toast(msg) {
    toastEl.textContent = msg;
    toastEl.classList.add('show');
    setTimeout(function() { toastEl.classList.remove('show'); }, 2500);
  }
  function pad2(n) { return (n < 10 ? '0' : '') + n; }

  if (localStorage.getItem('theme') === 'dark' ||
      (!localStorage.getItem('theme') && window.matchMedia('(prefers-color-scheme: dark)').matches)) {
    root.classList.add('dark');
  }
  document.getElementById('theme').addEventListener('click', function() {
    root.classList.toggle('dark');
    localStorage.setItem('theme', root.classList.contains('dark') ? 'dark' : 'light');
  });

  document.getElementById('share').addEventListener('click', function() {
    var url = share.url || window.location.href;
    if (navigator.share) {
      navigator.share({ title: share.title, text: share.text, url: url }).catch(function(err) {
        if (err && err.name !== 'AbortError') { toast('تعذرت المشاركة'); }
      });
      return;
    }
    window.open(share.whatsapp_url, '_blank');
  });
  document.getElementById('copy').addEventListener('click', function() {
    if (!navigator.clipboard) { toast('تعذر النسخ'); return; }
    navigator.clipboard.writeText(share.text).then(function() { toast('تم نسخ النص'); }, function() { toast('تعذر النسخ'); });
  });

  function render(s) {
    if (s.state === 'finished') {
      document.getElementById('counting').hidden = true;
      document.getElementById('finished').hidden = false;
      return;
    }
    var v = { days: s.days, hours: s.hours, minutes: s.minutes, seconds: s.seconds };
    document.querySelectorAll('.num').forEach(function(el) {
      el.textContent = pad2(v[el.getAttribute('data-unit')]);
    });
  }

  function connect() {
    var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
    var ws = new WebSocket(proto + location.host + '/ws');
    ws.onmessage = function(ev) { render(JSON.parse(ev.data)); };
    ws.onclose = function() { setTimeout(connect, 3000); };
  }
  connect();
})();
  </script>
</body>
</html>`
