package mint

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrBusy is returned while another write of the same workflow is in
// flight.
var ErrBusy = errors.New("another transaction is in progress, wait for it to finish")

type NameTooShortError struct {
	Name   string
	Length int
}

func (e *NameTooShortError) Error() string {
	return fmt.Sprintf("name %q is too short: it must be at least %d characters long", e.Name, MinNameLength)
}

// MintFailedError means the name was not registered. Err is nil when the
// register tx was mined with a failed status.
type MintFailedError struct {
	Name   string
	TxHash common.Hash
	Err    error
}

func (e *MintFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("minting %s failed: %s", e.Name, e.Err)
	}
	return fmt.Sprintf("minting %s failed, tx %s was reverted, please try again", e.Name, e.TxHash.Hex())
}

func (e *MintFailedError) Unwrap() error {
	return e.Err
}

// PartialMintError means the name was registered but its record was not
// set.
type PartialMintError struct {
	Name       string
	RegisterTx common.Hash
	RecordTx   common.Hash
	Err        error
}

func (e *PartialMintError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s is registered but setting its record failed: %s", e.Name, e.Err)
	}
	return fmt.Sprintf("%s is registered but setting its record failed, tx %s was reverted", e.Name, e.RecordTx.Hex())
}

func (e *PartialMintError) Unwrap() error {
	return e.Err
}

type RecordFailedError struct {
	Name   string
	TxHash common.Hash
	Err    error
}

func (e *RecordFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("updating the record of %s failed: %s", e.Name, e.Err)
	}
	return fmt.Sprintf("updating the record of %s failed, tx %s was reverted", e.Name, e.TxHash.Hex())
}

func (e *RecordFailedError) Unwrap() error {
	return e.Err
}
