// Package aassert has assertions that go beyond what stretchr/testify/assert offers.
// The assertions follow the design of testify/assert:
// they take a *testing.T, return whether they passed and accept optional msgAndArgs.
package aassert
