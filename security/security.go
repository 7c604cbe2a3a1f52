/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package security carries the SecurityParameters slot a Preconnection
// threads through to the protocol module without interpreting: identity
// material, pre-shared keys, and trust/challenge callbacks. TLS
// termination itself is out of scope (§1 non-goals); this package only
// gives a protocol module something concrete to read.
package security

// Identity is an opaque credential (certificate, key pair reference, or
// similar) the application registers for use during the handshake a
// protocol module performs.
type Identity struct {
	Label string
	Material []byte
}

// PreSharedKey is a PSK identity/secret pair.
type PreSharedKey struct {
	Identity string
	Key      []byte
}

// TrustVerifier is invoked by a protocol module during handshake to let
// the application accept or reject the peer's presented credentials.
type TrustVerifier func(peerMaterial []byte) (trusted bool)

// ChallengeHandler is invoked by a protocol module when the peer issues an
// authentication challenge.
type ChallengeHandler func(challenge []byte) (response []byte, err error)

// Parameters is the SecurityParameters slot, modeled after
// mami-project-postsocket's richer treatment of the same TAPS draft
// rather than the stubbed-out block in the original C headers.
type Parameters struct {
	identities []Identity
	psks       []PreSharedKey
	verify     TrustVerifier
	challenge  ChallengeHandler
}

// New returns an empty Parameters value.
func New() *Parameters {
	return &Parameters{}
}

// AddIdentity registers an additional identity.
func (p *Parameters) AddIdentity(id Identity) {
	p.identities = append(p.identities, id)
}

// Identities returns every registered identity.
func (p *Parameters) Identities() []Identity {
	return p.identities
}

// AddPreSharedKey registers an additional PSK.
func (p *Parameters) AddPreSharedKey(psk PreSharedKey) {
	p.psks = append(p.psks, psk)
}

// PreSharedKeys returns every registered PSK.
func (p *Parameters) PreSharedKeys() []PreSharedKey {
	return p.psks
}

// VerifyTrustWith installs the trust verifier a protocol module should
// call during handshake.
func (p *Parameters) VerifyTrustWith(fn TrustVerifier) {
	p.verify = fn
}

// Verifier returns the installed TrustVerifier, or nil.
func (p *Parameters) Verifier() TrustVerifier {
	return p.verify
}

// HandleChallengeWith installs the challenge handler a protocol module
// should call when the peer issues an authentication challenge.
func (p *Parameters) HandleChallengeWith(fn ChallengeHandler) {
	p.challenge = fn
}

// Challenger returns the installed ChallengeHandler, or nil.
func (p *Parameters) Challenger() ChallengeHandler {
	return p.challenge
}
