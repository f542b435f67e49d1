package types

import "fmt"

// Authority is what a token transfer is authorized by: either a transaction
// signer, or the program itself signing with the seeds and nonce of one of its
// derived addresses.
type Authority struct {
	Signer Address
	Seeds  [][]byte
	Nonce  uint8

	program bool
}

func SignerAuthority(signer Address) Authority {
	return Authority{Signer: signer}
}

func ProgramAuthority(seeds [][]byte, nonce uint8) Authority {
	return Authority{Seeds: seeds, Nonce: nonce, program: true}
}

func (a Authority) IsProgram() bool {
	return a.program
}

// Resolve returns the address this authority may act for.
func (a Authority) Resolve() (Address, error) {
	if !a.program {
		if a.Signer.IsZero() {
			return Address{}, fmt.Errorf("authority: empty signer")
		}
		return a.Signer, nil
	}
	return CreateProgramAddress(a.Seeds, a.Nonce)
}

func (a Authority) String() string {
	if a.program {
		addr, err := a.Resolve()
		if err != nil {
			return "program(invalid)"
		}
		return "program(" + addr.String() + ")"
	}
	return a.Signer.String()
}
