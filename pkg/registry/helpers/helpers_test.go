package helpers

import (
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestHelpers(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Helper Suite")
}

var _ = ginkgo.Describe("the helpers", func() {
	ginkgo.Describe("DetectKind", func() {
		ginkgo.It("should detect Docker Hub hosts", func() {
			gomega.Expect(DetectKind("docker.io")).To(gomega.Equal(KindDockerHub))
			gomega.Expect(DetectKind("index.docker.io")).To(gomega.Equal(KindDockerHub))
			gomega.Expect(DetectKind("hub.docker.com")).To(gomega.Equal(KindDockerHub))
		})
		ginkgo.It("should detect GHCR", func() {
			gomega.Expect(DetectKind("ghcr.io")).To(gomega.Equal(KindGHCR))
		})
		ginkgo.It("should detect GCR hosts by suffix", func() {
			gomega.Expect(DetectKind("gcr.io")).To(gomega.Equal(KindGCR))
			gomega.Expect(DetectKind("eu.gcr.io")).To(gomega.Equal(KindGCR))
		})
		ginkgo.It("should detect Quay", func() {
			gomega.Expect(DetectKind("quay.io")).To(gomega.Equal(KindQuay))
		})
		ginkgo.It("should map unknown hosts to the generic kind", func() {
			gomega.Expect(DetectKind("registry.example.com")).To(gomega.Equal(KindGeneric))
			gomega.Expect(DetectKind("localhost:5000")).To(gomega.Equal(KindGeneric))
			gomega.Expect(DetectKind("")).To(gomega.Equal(KindGeneric))
		})
	})

	ginkgo.Describe("NormalizeDigest", func() {
		ginkgo.It("should trim sha256: prefix from digest", func() {
			input := "sha256:d68e1e532088964195ad3a0a71526bc2f11a78de0def85629beb75e2265f0547"
			expected := "d68e1e532088964195ad3a0a71526bc2f11a78de0def85629beb75e2265f0547"
			gomega.Expect(NormalizeDigest(input)).To(gomega.Equal(expected))
		})

		ginkgo.It("should return unchanged digest without recognized prefix", func() {
			input := "d68e1e532088964195ad3a0a71526bc2f11a78de0def85629beb75e2265f0547"
			gomega.Expect(NormalizeDigest(input)).To(gomega.Equal(input))
		})

		ginkgo.It("should handle empty digest string", func() {
			gomega.Expect(NormalizeDigest("")).To(gomega.Equal(""))
		})
	})
})
