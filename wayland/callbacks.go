//go:build linux && cgo

package wayland

/*
#include "listeners.h"
*/
import "C"

import (
	"runtime/cgo"
)

func displayOf(h C.uintptr_t) *Display {
	return cgo.Handle(h).Value().(*Display)
}

//export shaderbgRegistryGlobal
func shaderbgRegistryGlobal(h C.uintptr_t, registry *C.struct_wl_registry, name C.uint32_t, iface *C.char, version C.uint32_t) {
	displayOf(h).global(registry, uint32(name), C.GoString(iface), uint32(version))
}

//export shaderbgRegistryGlobalRemove
func shaderbgRegistryGlobalRemove(h C.uintptr_t, name C.uint32_t) {
	displayOf(h).globalRemove(uint32(name))
}

//export shaderbgOutputName
func shaderbgOutputName(h C.uintptr_t, output *C.struct_wl_output, name *C.char) {
	displayOf(h).outputName(output, C.GoString(name))
}

//export shaderbgOutputDone
func shaderbgOutputDone(h C.uintptr_t, output *C.struct_wl_output) {
	displayOf(h).outputDone(output)
}

//export shaderbgLayerSurfaceConfigure
func shaderbgLayerSurfaceConfigure(h C.uintptr_t, role *C.struct_zwlr_layer_surface_v1, serial, width, height C.uint32_t) {
	displayOf(h).layerSurfaceConfigure(role, uint32(serial), uint32(width), uint32(height))
}

//export shaderbgLayerSurfaceClosed
func shaderbgLayerSurfaceClosed(h C.uintptr_t, role *C.struct_zwlr_layer_surface_v1) {
	displayOf(h).layerSurfaceClosed(role)
}

//export shaderbgFrameDone
func shaderbgFrameDone(h C.uintptr_t, cb *C.struct_wl_callback) {
	displayOf(h).frameDone(cb)
}
