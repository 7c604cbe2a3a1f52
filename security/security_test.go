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

package security_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/taps-core/security"
)

var _ = Describe("Parameters", func() {
	It("starts with no identities or PSKs", func() {
		p := security.New()
		Expect(p.Identities()).To(BeEmpty())
		Expect(p.PreSharedKeys()).To(BeEmpty())
		Expect(p.Verifier()).To(BeNil())
		Expect(p.Challenger()).To(BeNil())
	})

	It("accumulates identities and PSKs in registration order", func() {
		p := security.New()
		p.AddIdentity(security.Identity{Label: "first"})
		p.AddIdentity(security.Identity{Label: "second"})
		Expect(p.Identities()).To(HaveLen(2))
		Expect(p.Identities()[0].Label).To(Equal("first"))
		Expect(p.Identities()[1].Label).To(Equal("second"))

		p.AddPreSharedKey(security.PreSharedKey{Identity: "alice", Key: []byte("k1")})
		Expect(p.PreSharedKeys()).To(HaveLen(1))
		Expect(p.PreSharedKeys()[0].Identity).To(Equal("alice"))
	})

	It("installs and returns a trust verifier", func() {
		p := security.New()
		called := false
		p.VerifyTrustWith(func(peerMaterial []byte) bool {
			called = true
			return len(peerMaterial) > 0
		})

		Expect(p.Verifier()).NotTo(BeNil())
		Expect(p.Verifier()([]byte("cert"))).To(BeTrue())
		Expect(called).To(BeTrue())
	})

	It("installs and returns a challenge handler", func() {
		p := security.New()
		p.HandleChallengeWith(func(challenge []byte) ([]byte, error) {
			return append([]byte("resp:"), challenge...), nil
		})

		Expect(p.Challenger()).NotTo(BeNil())
		resp, err := p.Challenger()([]byte("nonce"))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp).To(Equal([]byte("resp:nonce")))
	})
})
