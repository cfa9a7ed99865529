package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/disintegration/imaging"

	"github.com/stepcap/stepcap/internal/session"
)

// HTMLRenderer renders a single self-contained HTML report: dark theme,
// a deck view with keyboard navigation plus a list view, every screenshot
// inlined as a base64 PNG data URI.
type HTMLRenderer struct {
	Author string
}

func (r *HTMLRenderer) Ext() string { return "html" }

type htmlStep struct {
	Num         string
	Description string
	// DataURI is empty for text-only steps, which render a note body.
	DataURI template.URL
}

type htmlData struct {
	Title     string
	Author    string
	Total     int
	Generated string
	Year      int
	Steps     []htmlStep
}

func (r *HTMLRenderer) Render(sess *session.Session) ([]byte, error) {
	views, err := flattenSteps(sess)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	data := htmlData{
		Title:     sess.Title(),
		Author:    r.Author,
		Total:     len(views),
		Generated: generatedStamp(now),
		Year:      now.Year(),
	}
	for _, v := range views {
		hs := htmlStep{
			Num:         fmt.Sprintf("%02d", v.Index),
			Description: v.Description,
		}
		if v.Image != nil {
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, v.Image, imaging.PNG); err != nil {
				return nil, fmt.Errorf("encoding step %d image: %w", v.Index, err)
			}
			hs.DataURI = template.URL("data:image/png;base64," +
				base64.StdEncoding.EncodeToString(buf.Bytes()))
		}
		data.Steps = append(data.Steps, hs)
	}

	var out bytes.Buffer
	if err := reportTemplate.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("rendering HTML report: %w", err)
	}
	return out.Bytes(), nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en"><head>
<meta charset="utf-8"><title>{{.Title}}</title>
<style>
*,*::before,*::after{box-sizing:border-box;margin:0;padding:0}
:root{--bg:#0e0e0e;--surface:#141414;--border:#252525;--accent:#3d8ef0;--accent12:rgba(61,142,240,.12);
       --text:#e2e2e2;--muted:#666;--radius:12px}
html,body{height:100%}
body{background:var(--bg);color:var(--text);font-family:sans-serif;font-weight:300;
     display:flex;flex-direction:column;overflow:hidden}

.topbar{display:flex;align-items:center;justify-content:space-between;
         padding:10px 28px;border-bottom:1px solid var(--border);flex-shrink:0}
.topbar h1{font-family:monospace;font-size:16px;font-weight:600;color:var(--accent)}
.topbar .right{display:flex;align-items:center;gap:16px}
.topbar .meta{color:var(--muted);font-family:monospace;font-size:11px}
.view-toggle{display:flex;gap:2px;background:var(--surface);border:1px solid var(--border);
              border-radius:6px;padding:2px;overflow:hidden}
.view-toggle button{background:none;border:none;color:var(--muted);font-family:monospace;
                     font-size:11px;padding:4px 14px;border-radius:4px;cursor:pointer;transition:.15s}
.view-toggle button:hover{color:var(--text)}
.view-toggle button.on{background:var(--accent);color:#fff}

.deck-wrap{flex:1;display:flex;flex-direction:column;overflow:hidden}
.deck-wrap.hidden{display:none}
.deck{flex:1;display:flex;align-items:center;justify-content:center;position:relative;
       overflow:hidden;padding:24px 80px}
.slide{display:none;flex-direction:column;align-items:center;width:100%;max-width:1100px;
        height:100%;animation:fadeIn .25s ease}
.slide.active{display:flex}
@keyframes fadeIn{from{opacity:0;transform:translateY(8px)}to{opacity:1;transform:translateY(0)}}
.slide.title-slide{justify-content:center;gap:12px}
.slide.title-slide h2{font-family:monospace;font-size:36px;font-weight:600;color:var(--accent)}
.slide.title-slide p{font-size:14px;color:var(--muted);font-family:monospace}
.slide .step-num{font-family:monospace;font-size:11px;font-weight:600;color:var(--accent);
                  background:var(--accent12);padding:4px 14px;border-radius:6px;white-space:nowrap;flex-shrink:0}
.slide .step-hdr{display:flex;align-items:center;gap:14px;width:100%;padding:0 4px;flex-shrink:0}
.slide .step-desc{font-size:14px;color:var(--text);line-height:1.5}
.slide .img-wrap{flex:1;display:flex;align-items:center;justify-content:center;
                  min-height:0;width:100%;padding:14px 0 4px}
.slide .img-wrap img{max-width:100%;max-height:100%;object-fit:contain;border-radius:var(--radius);
                      border:1px solid var(--border);background:var(--surface)}
.slide .note-body{flex:1;display:flex;align-items:center;justify-content:center;
                   font-size:18px;color:var(--text);line-height:1.7;text-align:center;
                   max-width:700px;padding:40px 20px}
.nav{position:absolute;top:50%;transform:translateY(-50%);width:48px;height:48px;border-radius:50%;
     background:var(--surface);border:1px solid var(--border);color:var(--muted);font-size:22px;
     display:flex;align-items:center;justify-content:center;cursor:pointer;transition:.15s;z-index:10;
     user-select:none}
.nav:hover{background:var(--accent);color:#fff;border-color:var(--accent)}
.nav.disabled{opacity:.2;pointer-events:none}
.nav.prev{left:16px}
.nav.next{right:16px}
.bottombar{display:flex;align-items:center;justify-content:center;gap:6px;position:relative;
            padding:10px 28px;border-top:1px solid var(--border);flex-shrink:0}
.dot{width:8px;height:8px;border-radius:50%;background:var(--border);cursor:pointer;transition:.15s}
.dot.active{background:var(--accent);box-shadow:0 0 6px rgba(61,142,240,.5)}
.dot:hover{background:var(--accent)}
.counter{position:absolute;right:28px;font-family:monospace;font-size:11px;color:var(--muted)}

.list-wrap{flex:1;overflow-y:auto;padding:40px 24px 80px}
.list-wrap.hidden{display:none}
.list-inner{max-width:1020px;margin:0 auto}
.card{background:var(--surface);border:1px solid var(--border);border-radius:10px;overflow:hidden;margin-bottom:28px}
.card-hdr{display:flex;align-items:center;gap:14px;padding:14px 20px;border-bottom:1px solid var(--border)}
.card-num{font-family:monospace;font-size:10px;font-weight:600;color:var(--accent);
           background:var(--accent12);padding:3px 10px;border-radius:4px;white-space:nowrap}
.card-desc{font-size:14px;color:var(--text);line-height:1.55}
.card img{display:block;width:100%;height:auto}
.card .card-note{padding:28px 24px;font-size:15px;line-height:1.7;color:var(--text)}

.footer{text-align:center;color:var(--muted);font-size:11px;font-family:monospace;
         margin-top:48px;padding-top:20px;border-top:1px solid var(--border)}
</style></head><body>

<div class="topbar">
  <h1>{{.Title}}</h1>
  <div class="right">
    <span class="meta">{{.Total}} steps &middot; {{.Generated}}{{if .Author}} &middot; {{.Author}}{{end}}</span>
    <div class="view-toggle" id="viewToggle">
      <button class="on" data-mode="deck">Deck</button>
      <button data-mode="list">List</button>
    </div>
  </div>
</div>

<div class="deck-wrap" id="deckWrap">
  <div class="deck" id="deck">
    <div class="nav prev disabled" id="prev" onclick="go(-1)">&lsaquo;</div>
    <div class="nav next" id="next" onclick="go(1)">&rsaquo;</div>
    <div class="slide title-slide active" data-idx="0">
      <h2>{{.Title}}</h2>
      <p>{{.Total}} steps</p>
      <p style="margin-top:24px;font-size:12px;color:var(--muted)">Press &rarr; or click to begin</p>
    </div>
{{- range .Steps}}
    <div class="slide">
      <div class="step-hdr"><span class="step-num">STEP {{.Num}}</span><span class="step-desc">{{.Description}}</span></div>
      {{if .DataURI}}<div class="img-wrap"><img src="{{.DataURI}}" alt="Step {{.Num}}"></div>{{else}}<div class="note-body">{{.Description}}</div>{{end}}
    </div>
{{- end}}
  </div>
  <div class="bottombar" id="dots"><span class="counter" id="counter">0 / {{.Total}}</span></div>
</div>

<div class="list-wrap hidden" id="listWrap">
  <div class="list-inner">
{{- range .Steps}}
    <div class="card">
      <div class="card-hdr"><span class="card-num">STEP {{.Num}}</span><span class="card-desc">{{.Description}}</span></div>
      {{if .DataURI}}<img src="{{.DataURI}}" alt="Step {{.Num}}">{{else}}<div class="card-note">{{.Description}}</div>{{end}}
    </div>
{{- end}}
    <div class="footer">Generated by stepcap &middot; {{.Year}}</div>
  </div>
</div>

<script>
const deckWrap=document.getElementById('deckWrap'),
      listWrap=document.getElementById('listWrap'),
      toggleBtns=document.querySelectorAll('#viewToggle button');
let mode='deck';
function setMode(m){
  mode=m;
  deckWrap.classList.toggle('hidden',m!=='deck');
  listWrap.classList.toggle('hidden',m!=='list');
  toggleBtns.forEach(b=>b.classList.toggle('on',b.dataset.mode===m));
}
toggleBtns.forEach(b=>b.addEventListener('click',()=>setMode(b.dataset.mode)));

const slides=document.querySelectorAll('.slide'),
      dots=document.getElementById('dots'),
      counter=document.getElementById('counter'),
      prevBtn=document.getElementById('prev'),
      nextBtn=document.getElementById('next'),
      N=slides.length,
      total={{.Total}};
let cur=0;
for(let i=0;i<N;i++){
  const d=document.createElement('span');
  d.className='dot'+(i===0?' active':'');
  d.onclick=()=>goTo(i);
  dots.insertBefore(d,counter);
}
const allDots=dots.querySelectorAll('.dot');
function goTo(i){
  if(i<0||i>=N)return;
  slides[cur].classList.remove('active');
  allDots[cur].classList.remove('active');
  cur=i;
  slides[cur].classList.add('active');
  allDots[cur].classList.add('active');
  counter.textContent=cur===0?('0 / '+total):(cur+' / '+total);
  prevBtn.classList.toggle('disabled',cur===0);
  nextBtn.classList.toggle('disabled',cur===N-1);
}
function go(d){goTo(cur+d)}
document.addEventListener('keydown',e=>{
  if(mode!=='deck')return;
  if(e.key==='ArrowRight'||e.key===' '){e.preventDefault();go(1)}
  if(e.key==='ArrowLeft'){e.preventDefault();go(-1)}
  if(e.key==='Home'){e.preventDefault();goTo(0)}
  if(e.key==='End'){e.preventDefault();goTo(N-1)}
});
document.getElementById('deck').addEventListener('click',e=>{
  if(e.target.closest('.nav'))return;
  go(1);
});
</script>
</body></html>
`))
