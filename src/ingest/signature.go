package ingest

import (
	"strings"

	"github.com/pipeos/pipes/src/utils/model"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signature of an ABI entry, e.g. transfer(address,uint256).
// Unnamed entries (constructor, fallback) have no signature.
// The result matches the method keys of solc's devdoc and userdoc.
func Signature(abi *model.AbiFunction) (signature string, ok bool) {
	if abi.Name == "" {
		return "", false
	}

	types := make([]string, len(abi.Inputs))
	for i, input := range abi.Inputs {
		types[i] = input.Type
	}

	return abi.Name + "(" + strings.Join(types, ",") + ")", true
}

// 4-byte function selector as a 0x-prefixed hex string
func Selector(signature string) string {
	return hexutil.Encode(crypto.Keccak256([]byte(signature))[:4])
}
