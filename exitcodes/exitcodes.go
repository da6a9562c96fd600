// Package exitcodes defines the standard exit codes used by s3-acceptor.
package exitcodes

// Exit code constants shared by the runner and the validation gate:
//
// * Success (0): every selected test passed, or the endpoint gated
//   production ready
// * TestFailure (1): one or more tests failed, or the readiness gate
//   was not met
// * RuntimeErr (2): harness problems such as bad configuration, an
//   empty registry or an unwritable report directory
const (
	Success     = 0
	TestFailure = 1
	RuntimeErr  = 2
)
