package ingest

import (
	"github.com/pipeos/pipes/src/utils/model"
)

// Assemble builds the function record for the ABI entry at the given position of the container.
// Missing devdoc or userdoc is treated as empty documentation.
func Assemble(container *model.PipeContainer, position int, abi *model.AbiFunction) (out *model.PipeFunction, err error) {
	abiObj, err := model.NewJSON(abi)
	if err != nil {
		return
	}

	out = &model.PipeFunction{
		ContainerId: container.Id,
		Position:    position,
		AbiObj:      abiObj,
		Uri:         container.Uri,
		Tags:        container.Tags,
		Timestamp:   container.Timestamp,
	}

	chainId, isContract := container.Container.ChainId()
	if isContract {
		out.ChainId = chainId
	}

	signature, ok := Signature(abi)
	if !ok {
		return
	}
	out.Signature = signature

	devdoc, userdoc := model.NewDoc(), model.NewDoc()
	if docs := container.Container.Docs(); docs != nil {
		if docs.Devdoc != nil {
			devdoc = docs.Devdoc
		}
		if docs.Userdoc != nil {
			userdoc = docs.Userdoc
		}
	}
	out.Devdoc = devdoc.Method(signature)
	out.Userdoc = userdoc.Method(signature)

	if isContract && isCallable(abi) {
		out.Selector = Selector(signature)
	}

	return
}

// Only functions are called through a selector, events and errors have other encodings
func isCallable(abi *model.AbiFunction) bool {
	return abi.Type == "" || abi.Type == model.AbiTypeFunction
}
