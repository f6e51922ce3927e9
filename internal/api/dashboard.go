package api

import (
	"net/http"
)

// DashboardHandler serves the fallback HTML dashboard. It is mounted only
// when no built frontend is present on disk; the page polls /api/events and
// /stats and derives the acceptance rate client-side from the raw counts.
func DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(dashboardHTML))
	}
}

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Telemetry Dashboard</title>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; }
    .header { background:#f5f5f5; padding:20px; border-radius:5px; margin-bottom:20px; }
    .event  { background:#f9f9f9; padding:10px; margin:10px 0; border-left:4px solid #007cba; }
    .timestamp { color:#666; font-size:0.9em; }
    .event-type{ font-weight:bold; color:#007cba; }
    pre { background:#f0f0f0; padding:10px; overflow-x:auto; }

    table { border-collapse:collapse; margin-top:20px; }
    th,td { border:1px solid #ddd; padding:8px; text-align:center; }
    th { background:#007cba; color:#fff; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Telemetry Dashboard</h1>
    <p>Capture endpoint: <code>POST /capture/</code></p>
  </div>

  <h2>Recent Events</h2>
  <div id="events">Loading...</div>

  <h2>Metrics (Accepted vs Rejected)</h2>
  <div id="metrics">Loading...</div>

  <script>
    function loadEvents() {
      fetch('/api/events')
        .then(r=>r.json())
        .then(events=>{
          const div=document.getElementById('events')
          if(events.length===0){ div.innerHTML='<p>No events yet.</p>'; return }
          div.innerHTML = events.map(ev => ` + "`" + `
             <div class="event">
               <div class="timestamp">${ev.timestamp}</div>
               <div class="event-type">${ev.event}</div>
               <pre>${JSON.stringify(ev,null,2)}</pre>
             </div>` + "`" + `).join('')
        })
        .catch(()=>{document.getElementById('events').innerHTML='<p>Error loading events</p>'})
    }

    function loadStats() {
      fetch('/stats')
        .then(r=>r.json())
        .then(s=>{
          const m=document.getElementById('metrics')
          const acc=s.accepted||{}
          const rej=s.rejected||{}
          const tot=s.totals||{}

          const accepted=(acc.option_selected||0)+(acc.thumbs_up||0)
          const rejected=(rej.options_ignored||0)+(rej.thumbs_down||0)
          const rate=accepted+rejected===0?0:Math.round(100*accepted/(accepted+rejected))

          m.innerHTML = ` + "`" + `
            <table>
              <thead><tr><th>Metric</th><th>Accepted</th><th>Rejected</th></tr></thead>
              <tbody>
                <tr><td>Options</td><td>${acc.option_selected}</td><td>${rej.options_ignored}</td></tr>
                <tr><td>Thumbs</td><td>${acc.thumbs_up}</td><td>${rej.thumbs_down}</td></tr>
              </tbody>
            </table>
            <p>Acceptance rate: ${rate}%</p>
            <h4>Event Totals</h4>
            <pre>${JSON.stringify(tot,null,2)}</pre>` + "`" + `
        })
        .catch(()=>{document.getElementById('metrics').innerHTML='<p>Error loading metrics</p>'})
    }

    loadEvents()
    loadStats()
    setInterval(loadEvents, 5000)
    setInterval(loadStats, 10000)
  </script>
</body>
</html>
`
