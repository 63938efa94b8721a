package tray

import "fyne.io/fyne/v2"

// SVG content for the tray and window icon: a dashed selection frame with a
// record dot in the corner.
const SVGContent = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <rect x="1.5" y="2.5" width="10" height="8" fill="none" stroke="#0078d4" stroke-width="1.5" stroke-dasharray="2,1"/>
  <circle cx="12" cy="12" r="3" fill="#d83b01"/>
  <circle cx="12" cy="12" r="1.2" fill="#ffffff"/>
</svg>`

// Icon is the application icon resource.
var Icon = fyne.NewStaticResource("screen-tool.svg", []byte(SVGContent))
