package browser

// The in-page programs below form a fixed contract with the fetch strategy:
// each returns a JSON-serializable value of a stable shape. They are the
// only scripts ever passed to Page.Evaluate.

// ScriptExpandListings clicks every collapsible listing header it can find
// and returns how many it clicked. Best effort; the result is diagnostic.
const ScriptExpandListings = `(() => {
	const selectors = [
		'[aria-expanded="false"]',
		'.accordion-header',
		'.job-group-toggle',
		'details:not([open]) summary',
	];
	let clicked = 0;
	for (const sel of selectors) {
		for (const el of document.querySelectorAll(sel)) {
			try { el.click(); clicked++; } catch (e) {}
		}
	}
	return clicked;
})()`

// ScriptScrapeStructured walks known listing selector patterns and returns
// an array of {title, location, department, apply_url} objects. Relative
// apply links are resolved against the page URL.
const ScriptScrapeStructured = `(() => {
	const patterns = [
		{ item: '.job-listing, .job-item, .career-item', title: '.job-title, h3, h4', location: '.job-location, .location', department: '.job-department, .department', link: 'a[href]' },
		{ item: '[class*="opening"]', title: 'a', location: '.location', department: '.department, .team', link: 'a[href]' },
		{ item: 'li.position, .position', title: '.title, h3', location: '.location', department: '.category', link: 'a[href]' },
	];
	const text = (root, sel) => {
		const el = root.querySelector(sel);
		return el ? el.textContent.trim() : '';
	};
	for (const p of patterns) {
		const out = [];
		for (const item of document.querySelectorAll(p.item)) {
			const title = text(item, p.title);
			if (!title) continue;
			const rec = { title };
			const location = text(item, p.location);
			if (location) rec.location = location;
			const department = text(item, p.department);
			if (department) rec.department = department;
			const link = item.querySelector(p.link);
			if (link && link.getAttribute('href')) {
				rec.apply_url = new URL(link.getAttribute('href'), window.location.href).toString();
			}
			out.push(rec);
		}
		if (out.length > 0) return out;
	}
	return [];
})()`

// ScriptCollectJSONLD returns the text content of every JSON-LD script
// block; decoding happens on the Go side.
const ScriptCollectJSONLD = `(() => {
	const out = [];
	for (const el of document.querySelectorAll('script[type="application/ld+json"]')) {
		if (el.textContent && el.textContent.trim()) out.push(el.textContent);
	}
	return out;
})()`

// ScriptBodyText returns the page's visible text for the free-text tactic
// and the no-positions indicator check.
const ScriptBodyText = `(() => document.body ? document.body.innerText : '')()`
