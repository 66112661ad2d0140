package autofill

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BrowserConfig controls how the automation browser is obtained.
type BrowserConfig struct {
	// DebuggerURL attaches to an already-running Chrome. Empty launches one.
	DebuggerURL string
	Headless    bool
	// NavigationTimeout bounds the initial page load. Navigation failure is
	// the one fatal error in a run; everything after it degrades per field.
	NavigationTimeout time.Duration
	// FieldTimeout bounds every per-field element lookup and DOM read, so
	// one stuck selector fails that candidate instead of stalling the run.
	FieldTimeout time.Duration
}

// DefaultBrowserConfig returns the headless defaults.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:          true,
		NavigationTimeout: 30 * time.Second,
		FieldTimeout:      5 * time.Second,
	}
}

// Browser owns one Chrome connection shared by the forms opened through it.
type Browser struct {
	browser *rod.Browser
	cfg     BrowserConfig
}

// Connect attaches to the configured debugger URL or launches a local
// Chrome.
func Connect(ctx context.Context, cfg BrowserConfig) (*Browser, error) {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	if cfg.FieldTimeout <= 0 {
		cfg.FieldTimeout = 5 * time.Second
	}
	controlURL := cfg.DebuggerURL
	if controlURL == "" {
		url, err := launcher.New().Headless(cfg.Headless).Launch()
		if err != nil {
			return nil, eris.Wrap(err, "autofill: launch chrome")
		}
		controlURL = url
	}
	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, eris.Wrap(err, "autofill: connect to chrome")
	}
	return &Browser{browser: browser, cfg: cfg}, nil
}

// Close shuts the browser down.
func (b *Browser) Close() error {
	if b.browser == nil {
		return nil
	}
	return b.browser.Close()
}

// Open navigates a fresh page to url and returns it as a fillable Form.
func (b *Browser) Open(ctx context.Context, url string) (Form, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, eris.Wrap(err, "autofill: create page")
	}
	timed := page.Context(ctx).Timeout(b.cfg.NavigationTimeout)
	if err := timed.Navigate(url); err != nil {
		_ = page.Close()
		return nil, eris.Wrapf(err, "autofill: navigate to %s", url)
	}
	if err := timed.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, eris.Wrapf(err, "autofill: load %s", url)
	}
	zap.L().Info("form opened", zap.String("url", url))
	return &rodForm{page: page, url: url, fieldTimeout: b.cfg.FieldTimeout}, nil
}

type rodForm struct {
	page         *rod.Page
	url          string
	fieldTimeout time.Duration
}

func (f *rodForm) URL() string {
	if info, err := f.page.Info(); err == nil && info.URL != "" {
		return info.URL
	}
	return f.url
}

// Close releases the underlying page.
func (f *rodForm) Close() error { return f.page.Close() }

// candidateJS discovers visible form controls and their best label text.
// Label resolution order: <label for=>, wrapping <label>, aria-label,
// placeholder, then the humanized name/id. Locator is #id when an id exists,
// an absolute XPath otherwise.
const candidateJS = `
() => {
	const xpathOf = (el) => {
		const parts = [];
		for (let node = el; node && node.nodeType === 1; node = node.parentNode) {
			let idx = 1;
			for (let sib = node.previousSibling; sib; sib = sib.previousSibling) {
				if (sib.nodeType === 1 && sib.tagName === node.tagName) idx++;
			}
			parts.unshift(node.tagName.toLowerCase() + '[' + idx + ']');
		}
		return '/' + parts.join('/');
	};
	const humanize = (s) => (s || '').replace(/[_-]+/g, ' ').replace(/([a-z])([A-Z])/g, '$1 $2').trim();
	const labelFor = (el) => {
		if (el.id) {
			const lab = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
			if (lab && lab.innerText.trim()) return lab.innerText.trim();
		}
		const wrap = el.closest('label');
		if (wrap && wrap.innerText.trim()) return wrap.innerText.trim();
		const aria = el.getAttribute('aria-label');
		if (aria && aria.trim()) return aria.trim();
		const ph = el.getAttribute('placeholder');
		if (ph && ph.trim()) return ph.trim();
		if (el.tagName === 'BUTTON' && el.innerText.trim()) return el.innerText.trim();
		return humanize(el.getAttribute('name') || el.id);
	};
	const out = [];
	for (const el of document.querySelectorAll('input, select, textarea, button')) {
		const type = (el.getAttribute('type') || '').toLowerCase();
		if (type === 'hidden') continue;
		const style = window.getComputedStyle(el);
		if (style.display === 'none' || style.visibility === 'hidden') continue;
		const label = labelFor(el);
		if (!label) continue;
		const locator = el.id ? '#' + CSS.escape(el.id) : xpathOf(el);
		out.push({ label, locator });
	}
	return out;
}
`

func (f *rodForm) Candidates() ([]FormCandidate, error) {
	res, err := f.page.Evaluate(&rod.EvalOptions{JS: candidateJS, ByValue: true})
	if err != nil {
		return nil, eris.Wrap(err, "autofill: discover candidates")
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "autofill: decode candidates")
	}
	var rows []struct {
		Label   string `json:"label"`
		Locator string `json:"locator"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, eris.Wrap(err, "autofill: decode candidates")
	}
	candidates := make([]FormCandidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, FormCandidate{Label: row.Label, Locator: row.Locator})
	}
	return candidates, nil
}

func (f *rodForm) Element(locator string) (Element, error) {
	// The lookup gets its own deadline; a selector hidden by an earlier
	// write times out here and becomes that candidate's failure.
	page := f.page.Timeout(f.fieldTimeout)
	var el *rod.Element
	var err error
	if strings.HasPrefix(locator, "/") {
		el, err = page.ElementX(locator)
	} else {
		el, err = page.Element(locator)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "autofill: locate %s", locator)
	}
	return &rodElement{el: el.CancelTimeout(), timeout: f.fieldTimeout}, nil
}

func (f *rodForm) Query(selector string) (Element, bool) {
	has, el, err := f.page.Has(selector)
	if err != nil || !has {
		return nil, false
	}
	return &rodElement{el: el, timeout: f.fieldTimeout}, true
}

type rodElement struct {
	el      *rod.Element
	timeout time.Duration
}

// bounded clones the element with an independent per-operation deadline.
func (e *rodElement) bounded() *rod.Element {
	if e.timeout > 0 {
		return e.el.Timeout(e.timeout)
	}
	return e.el
}

func (e *rodElement) evalJSON(js string, out any, args ...any) error {
	res, err := e.bounded().Eval(js, args...)
	if err != nil {
		return err
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (e *rodElement) Tag() (string, error) {
	res, err := e.bounded().Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return "", eris.Wrap(err, "autofill: read tag")
	}
	return res.Value.Str(), nil
}

func (e *rodElement) InputType() (string, error) {
	res, err := e.bounded().Eval(`() => ((this.getAttribute('type') || this.tagName) + '').toLowerCase()`)
	if err != nil {
		return "", eris.Wrap(err, "autofill: read input type")
	}
	return res.Value.Str(), nil
}

func (e *rodElement) Fill(value string) error {
	// Clear through the DOM first so Input appends to an empty field, then
	// type so framework listeners fire.
	if _, err := e.bounded().Eval(`() => { this.value = '' }`); err != nil {
		return eris.Wrap(err, "autofill: clear element")
	}
	if err := e.bounded().Input(value); err != nil {
		return eris.Wrap(err, "autofill: input value")
	}
	return nil
}

func (e *rodElement) Options() ([]Option, error) {
	var options []Option
	err := e.evalJSON(`() => Array.from(this.options || []).map(o => ({ value: o.value, label: (o.label || o.text || '').trim() }))`, &options)
	if err != nil {
		return nil, eris.Wrap(err, "autofill: read select options")
	}
	return options, nil
}

const selectJS = `
(mode, wanted) => {
	for (const o of Array.from(this.options || [])) {
		const text = (o.label || o.text || '').trim();
		if ((mode === 'value' && o.value === wanted) || (mode === 'label' && text === wanted)) {
			this.value = o.value;
			this.dispatchEvent(new Event('input', { bubbles: true }));
			this.dispatchEvent(new Event('change', { bubbles: true }));
			return true;
		}
	}
	return false;
}
`

func (e *rodElement) selectOption(mode, wanted string) error {
	res, err := e.bounded().Eval(selectJS, mode, wanted)
	if err != nil {
		return eris.Wrap(err, "autofill: select option")
	}
	if !res.Value.Bool() {
		return eris.Errorf("autofill: no option with %s %q", mode, wanted)
	}
	return nil
}

func (e *rodElement) SelectByValue(value string) error { return e.selectOption("value", value) }
func (e *rodElement) SelectByLabel(label string) error { return e.selectOption("label", label) }

const radioOptionsJS = `
() => {
	const name = this.getAttribute('name');
	const group = name
		? Array.from(document.querySelectorAll('input[type="radio"][name="' + CSS.escape(name) + '"]'))
		: [this];
	return group.map(el => {
		let label = '';
		if (el.id) {
			const lab = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
			if (lab) label = lab.innerText.trim();
		}
		if (!label) {
			const wrap = el.closest('label');
			if (wrap) label = wrap.innerText.trim();
		}
		return { value: el.value, label };
	});
}
`

func (e *rodElement) RadioOptions() ([]Option, error) {
	var options []Option
	if err := e.evalJSON(radioOptionsJS, &options); err != nil {
		return nil, eris.Wrap(err, "autofill: read radio group")
	}
	return options, nil
}

const checkRadioJS = `
(wanted) => {
	const name = this.getAttribute('name');
	const group = name
		? Array.from(document.querySelectorAll('input[type="radio"][name="' + CSS.escape(name) + '"]'))
		: [this];
	for (const el of group) {
		if (el.value === wanted) {
			el.click();
			return true;
		}
	}
	return false;
}
`

func (e *rodElement) CheckRadio(value string) error {
	res, err := e.bounded().Eval(checkRadioJS, value)
	if err != nil {
		return eris.Wrap(err, "autofill: check radio")
	}
	if !res.Value.Bool() {
		return eris.Errorf("autofill: no radio with value %q", value)
	}
	return nil
}

func (e *rodElement) Check() error {
	if _, err := e.bounded().Eval(`() => { if (!this.checked) this.click() }`); err != nil {
		return eris.Wrap(err, "autofill: check box")
	}
	return nil
}

const readbackJS = `
() => {
	const tag = this.tagName.toLowerCase();
	const type = tag === 'select' ? 'select' : ((this.getAttribute('type') || tag) + '').toLowerCase();
	const out = { value: this.value || '', input_type: type, checked: !!this.checked };
	if (tag === 'select' && this.selectedIndex >= 0) {
		const o = this.options[this.selectedIndex];
		out.selected = { value: o.value, label: (o.label || o.text || '').trim() };
	}
	if (type === 'radio') {
		const name = this.getAttribute('name');
		if (name) {
			const picked = document.querySelector('input[type="radio"][name="' + CSS.escape(name) + '"]:checked');
			if (picked) out.value = picked.value;
		}
	}
	return out;
}
`

func (e *rodElement) Readback() (Readback, error) {
	var raw struct {
		Value     string  `json:"value"`
		InputType string  `json:"input_type"`
		Checked   bool    `json:"checked"`
		Selected  *Option `json:"selected"`
	}
	if err := e.evalJSON(readbackJS, &raw); err != nil {
		return Readback{}, eris.Wrap(err, "autofill: read element state")
	}
	return Readback{
		Value:     raw.Value,
		InputType: raw.InputType,
		Checked:   raw.Checked,
		Selected:  raw.Selected,
	}, nil
}
