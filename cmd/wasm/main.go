//go:build js && wasm

// Command wasm exports get_latest_block to a JavaScript host.
//
//	GOOS=js GOARCH=wasm go build -o latest_block.wasm ./cmd/wasm
package main

import (
	"context"
	"syscall/js"

	"github.com/oasisprotocol/latest-block/bridge"
	"github.com/oasisprotocol/latest-block/fetcher"
)

const exportName = "get_latest_block"

func getLatestBlock(adapter *bridge.Adapter) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		// The executor runs synchronously inside the Promise constructor, so it
		// can be released as soon as the promise exists.
		executor := js.FuncOf(func(this js.Value, args []js.Value) any {
			resolve, reject := args[0], args[1]

			// Blocking calls must not run on the JS event loop goroutine.
			go func() {
				block, herr := adapter.GetLatestBlock(context.Background())
				if herr != nil {
					reject.Invoke(herr.Message)
					return
				}
				resolve.Invoke(block)
			}()
			return nil
		})
		defer executor.Release()

		return js.Global().Get("Promise").New(executor)
	})
}

func main() {
	adapter := bridge.NewAdapter(fetcher.New(fetcher.DefaultEndpoint).LatestBlock, nil)
	js.Global().Set(exportName, getLatestBlock(adapter))

	// Keep the exports alive for the lifetime of the host.
	select {}
}
