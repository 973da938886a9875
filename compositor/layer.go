package compositor

import (
	"fmt"
)

// Layer selects the wlr-layer-shell stacking layer of a surface. The
// numeric values match zwlr_layer_shell_v1.layer.
type Layer uint32

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

// LayerNames lists the accepted layer names in stacking order.
var LayerNames = [...]string{"background", "bottom", "top", "overlay"}

// ParseLayer maps a layer name to its value.
func ParseLayer(s string) (Layer, bool) {
	for i, name := range LayerNames {
		if s == name {
			return Layer(i), true
		}
	}
	return 0, false
}

// String returns the layer name.
func (l Layer) String() string {
	if int(l) < len(LayerNames) {
		return LayerNames[l]
	}
	return fmt.Sprintf("Layer(%d)", uint32(l))
}
