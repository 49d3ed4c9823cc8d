package browser

// Functions below are invoked with `this` bound to a remote object:
// the scope root (a document or a frame element) for lookups, the element
// itself for everything else.

const findScript = `function(xpath) {
	let doc = this;
	if (this.tagName === 'IFRAME' || this.tagName === 'FRAME') {
		doc = this.contentDocument;
		if (!doc) { throw new Error('frame document is not accessible'); }
	}
	const r = doc.evaluate(xpath, doc, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null);
	return r.singleNodeValue;
}`

const stateScript = `function() {
	const el = this;
	const view = el.ownerDocument.defaultView;
	const style = view.getComputedStyle(el);
	const rect = el.getBoundingClientRect();
	const visible = style.visibility !== 'hidden' && style.display !== 'none' &&
		parseFloat(style.opacity || '1') > 0 && rect.width > 0 && rect.height > 0;
	const enabled = !el.disabled && el.getAttribute('aria-disabled') !== 'true';
	let obscured = false;
	if (visible) {
		const x = rect.left + rect.width / 2;
		const y = rect.top + rect.height / 2;
		if (x >= 0 && y >= 0 && x < view.innerWidth && y < view.innerHeight) {
			let top = el.ownerDocument.elementFromPoint(x, y);
			let inside = false;
			while (top) {
				if (top === el) { inside = true; break; }
				top = top.parentNode || top.host;
			}
			obscured = !inside;
		}
	}
	return {visible: visible, enabled: enabled, obscured: obscured};
}`

const scrollScript = `function() { this.scrollIntoView(true); }`

const clickScript = `function() { this.click(); }`

// centerScript returns the element centre in top-level viewport coordinates.
const centerScript = `function() {
	const rect = this.getBoundingClientRect();
	let x = rect.left + rect.width / 2;
	let y = rect.top + rect.height / 2;
	let w = this.ownerDocument.defaultView;
	while (w && w.frameElement) {
		const fr = w.frameElement.getBoundingClientRect();
		x += fr.left;
		y += fr.top;
		w = w.parent;
	}
	return {x: x, y: y};
}`

const clearScript = `function() {
	if ('value' in this) {
		this.value = '';
		this.dispatchEvent(new Event('input', {bubbles: true}));
		this.dispatchEvent(new Event('change', {bubbles: true}));
	} else {
		this.textContent = '';
	}
}`

const submitScript = `function() {
	const form = this.form || this.closest('form');
	if (!form) { throw new Error('element is not inside a form'); }
	form.submit();
}`

const textScript = `function() { return this.innerText || this.textContent || ''; }`
