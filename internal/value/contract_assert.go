//go:build ecvassert

package value

const assertContracts = true
