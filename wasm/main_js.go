//go:build js && wasm

package main

import (
	"context"
	"syscall/js"

	"github.com/voxelsplace/voxsprite/api"
	"github.com/voxelsplace/voxsprite/render"
	"github.com/voxelsplace/voxsprite/spritepack"
)

func bytesFromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func filesToJS(files map[string][]byte) js.Value {
	result := js.Global().Get("Object").New()
	for name, b := range files {
		result.Set(name, bytesToJS(b))
	}
	return result
}

// stringList reads an optional array of strings from opts[key]. A missing
// key gives nil.
func stringList(opts js.Value, key string) []string {
	if opts.Type() != js.TypeObject {
		return nil
	}
	v := opts.Get(key)
	if v.Type() == js.TypeUndefined || v.Type() == js.TypeNull {
		return nil
	}
	out := make([]string, v.Length())
	for i := range out {
		out[i] = v.Index(i).String()
	}
	return out
}

// renderVox(bytes, {model, views, sides, extras, scale}) returns an object
// mapping <label>.png -> Uint8Array. Omitted views and sides mean all;
// omitted extras mean none.
func renderVox(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vox bytes")
	}
	var opts js.Value
	if len(args) > 1 {
		opts = args[1]
	}
	var sel render.Selection
	var ro api.RenderOptions
	if opts.Type() == js.TypeObject {
		if m := opts.Get("model"); m.Type() == js.TypeNumber {
			sel.Models = []int{m.Int()}
		}
		if s := opts.Get("scale"); s.Type() == js.TypeNumber {
			ro.Scale = s.Int()
		}
	}
	views, sides := stringList(opts, "views"), stringList(opts, "sides")
	if views != nil {
		sel.Views = []render.View{}
		for _, name := range views {
			v, err := render.ParseView(name)
			if err != nil {
				return js.ValueOf(err.Error())
			}
			sel.Views = append(sel.Views, v)
		}
	}
	if sides != nil {
		sel.Sides = []render.Side{}
		for _, name := range sides {
			s, err := render.ParseSide(name)
			if err != nil {
				return js.ValueOf(err.Error())
			}
			sel.Sides = append(sel.Sides, s)
		}
	}
	for _, name := range stringList(opts, "extras") {
		e, err := render.ParseExtra(name)
		if err != nil {
			return js.ValueOf(err.Error())
		}
		sel.Extras = append(sel.Extras, e)
	}
	files, err := api.RenderVOXToPNG(context.Background(), bytesFromJS(args[0]), sel, ro)
	if err != nil && len(files) == 0 {
		return js.ValueOf(err.Error())
	}
	return filesToJS(files)
}

func vox2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vox bytes")
	}
	model := -1
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		model = args[1].Int()
	}
	out, err := api.VOXToGLB(bytesFromJS(args[0]), model)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func packSprites(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing files object")
	}
	filesObj := args[0]
	files := map[string][]byte{}
	keys := js.Global().Get("Object").Call("keys", filesObj)
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		files[k] = bytesFromJS(filesObj.Get(k))
	}
	out, err := api.PackPNGs(files, spritepack.CompZstd)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func unpackSprites(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	files, err := api.UnpackToPNG(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return filesToJS(files)
}

func main() {
	js.Global().Set("renderVox", js.FuncOf(renderVox))
	js.Global().Set("vox2glb", js.FuncOf(vox2glb))
	js.Global().Set("packSprites", js.FuncOf(packSprites))
	js.Global().Set("unpackSprites", js.FuncOf(unpackSprites))
	select {}
}
