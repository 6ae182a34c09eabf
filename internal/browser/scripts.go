// internal/browser/scripts.go
package browser

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Every script evaluates to a JSON string so results decode the same way
// regardless of what the page returns.

// snakeFn maps a host snake to the raw shape. Missing parts are kept as null so
// the extractor sees the same holes the host has. self marks the object that is
// the player, since identity does not survive serialization.
const snakeFn = `function (s, me) {
  if (!s) return null;
  var parts = Array.isArray(s.gptz) ? s.gptz : [];
  return {
    id: typeof s.id === 'number' ? s.id : 0,
    x: s.xx, y: s.yy,
    angle: s.ang,
    speed: s.wmd,
    boosted: !!s.sfr,
    self: s === me,
    parts: parts.map(function (p) { return p ? { x: p.xx, y: p.yy } : null; })
  };
}`

var (
	playerScript = `(function () {
  var snake = ` + snakeFn + `;
  return JSON.stringify(snake(window.slither, window.slither));
})()`

	foodScript = `(function () {
  if (!Array.isArray(window.foods)) throw new Error('window.foods unavailable');
  return JSON.stringify(window.foods.map(function (f) {
    return f ? { x: f.xx, y: f.yy, size: f.sz } : null;
  }));
})()`

	preyScript = `(function () {
  if (!Array.isArray(window.preys)) throw new Error('window.preys unavailable');
  return JSON.stringify(window.preys.map(function (p) {
    return p ? { x: p.xx, y: p.yy, size: p.sz } : null;
  }));
})()`

	// window.os holds every tracked snake, the player included.
	snakesScript = `(function () {
  if (!window.os) throw new Error('window.os unavailable');
  var snake = ` + snakeFn + `;
  var me = window.slither;
  return JSON.stringify(Object.values(window.os).map(function (s) { return snake(s, me); }));
})()`
)

// literalAPI leaves HTML characters alone so selectors stay readable in scripts.
var literalAPI = jsoniter.Config{EscapeHTML: false}.Froze()

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	b, err := literalAPI.Marshal(s)
	if err != nil {
		// Marshaling a Go string cannot fail.
		panic(err)
	}
	return string(b)
}

func scoreScript(selector string) string {
	return fmt.Sprintf(`(function () {
  var els = document.querySelectorAll(%s);
  if (!els || els.length < 2) return JSON.stringify(0);
  var n = parseInt(els[1].innerText, 10);
  return JSON.stringify(isNaN(n) ? 0 : n);
})()`, jsString(selector))
}

func lastScoreScript(selector string) string {
	return fmt.Sprintf(`(function () {
  var el = document.querySelector(%s);
  if (!el) return JSON.stringify(null);
  var n = parseInt(el.innerText, 10);
  return JSON.stringify(isNaN(n) ? null : n);
})()`, jsString(selector))
}

func opacityScript(selector string) string {
	return fmt.Sprintf(`(function () {
  var el = document.querySelector(%s);
  return JSON.stringify({ found: !!el, opacity: el ? String(el.style.opacity) : '' });
})()`, jsString(selector))
}

func existsScript(selector string) string {
	return fmt.Sprintf(`JSON.stringify(document.querySelector(%s) !== null)`, jsString(selector))
}

func clickScript(selector string) string {
	return fmt.Sprintf(`(function () {
  var el = document.querySelector(%s);
  if (!el) return JSON.stringify(false);
  el.click();
  return JSON.stringify(true);
})()`, jsString(selector))
}

// captureScript scales the game canvas into a size x size offscreen canvas and
// returns its RGBA pixels base64 encoded. The offscreen canvas is reused.
func captureScript(selector string, size int) string {
	return fmt.Sprintf(`(function () {
  var src = document.querySelectorAll(%s)[0];
  if (!src) throw new Error('render surface not found');
  var size = %d;
  var dst = window.__snakepilotCapture;
  if (!dst || dst.width !== size || dst.height !== size) {
    dst = document.createElement('canvas');
    dst.width = size;
    dst.height = size;
    window.__snakepilotCapture = dst;
  }
  var ctx = dst.getContext('2d');
  ctx.drawImage(src, 0, 0, size, size);
  var data = ctx.getImageData(0, 0, size, size).data;
  var bin = '';
  var chunk = 0x8000;
  for (var i = 0; i < data.length; i += chunk) {
    bin += String.fromCharCode.apply(null, data.subarray(i, i + chunk));
  }
  return JSON.stringify({ width: size, height: size, data: btoa(bin) });
})()`, jsString(selector), size)
}
