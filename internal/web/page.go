package web

const pageHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Task Board</title>
    <link rel="stylesheet" href="/static/app.css" />
  </head>
  <body>
    <main class="container">
      <header class="header">
        <h1 class="title">Not To Do List</h1>
      </header>
      {{if .LoadError}}<div class="alert alert-danger" role="alert">{{.LoadError}}</div>{{end}}
      <div class="columns">
        {{range .Lists}}
        <div class="panel">{{renderList .}}</div>
        {{end}}
      </div>
    </main>
  </body>
</html>
`

const appCSS = `
:root{
  --bg: #f4f5f7;
  --panel: #ffffff;
  --text: #1d1f24;
  --muted: #5f6673;
  --line: rgba(0,0,0,0.08);
  --primary: #0d6efd;
  --info: #0dcaf0;
  --warning: #ffc107;
  --danger: #dc3545;
  --success-bg: #d1e7dd;
  --danger-bg: #f8d7da;
  --sans: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial;
}
*{box-sizing:border-box}
body{margin:0; font-family:var(--sans); background:var(--bg); color:var(--text)}
.container{max-width:1100px; margin:0 auto; padding:32px 20px 60px}
.title{margin:0 0 18px; font-size:28px}
.columns{display:grid; grid-template-columns:repeat(auto-fit, minmax(380px, 1fr)); gap:20px}
.panel{background:var(--panel); border:1px solid var(--line); border-radius:12px; padding:16px}
.stack{display:flex; flex-direction:column; gap:12px}
.listTitle{font-size:14px; letter-spacing:0.4px}
.alert{display:flex; justify-content:space-between; align-items:center; padding:8px 12px; border-radius:8px}
.alert p{margin:0}
.alert-success{background:var(--success-bg)}
.alert-danger{background:var(--danger-bg)}
.close{border:none; background:none; font-size:18px; cursor:pointer}
.list{list-style:none; margin:0; padding:0; border:1px solid var(--line); border-radius:8px}
.row{display:flex; justify-content:space-between; align-items:center; padding:12px 14px; border-bottom:1px solid var(--line)}
.row:last-child{border-bottom:none}
.rowMeta{display:flex; gap:8px; margin-top:6px}
.rowActions{display:flex; gap:8px}
.rowActions form{margin:0}
.badge{display:inline-block; padding:2px 8px; border-radius:999px; font-size:12px; color:#fff}
.badge-primary{background:var(--primary)}
.badge-info{background:var(--info)}
.btn{border:none; border-radius:6px; padding:6px 12px; cursor:pointer}
.btn-warning{background:var(--warning)}
.btn-danger{background:var(--danger); color:#fff}
.empty{padding:24px; text-align:center; color:var(--muted); border:1px dashed var(--line); border-radius:8px}
.footer{margin:4px 0 0; color:var(--muted)}
`
