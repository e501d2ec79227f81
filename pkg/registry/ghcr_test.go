package registry_test

import (
	"context"
	"net/http"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/deckhand-tools/deckhand/pkg/registry"
)

var _ = ginkgo.Describe("the GHCR client", func() {
	var server *ghttp.Server
	var client *registry.GHCR

	tokenHandler := func() http.HandlerFunc {
		return ghttp.CombineHandlers(
			ghttp.VerifyRequest("GET", "/token", "scope=repository:owner/app:pull"),
			ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]string{"token": "anon-token"}),
		)
	}

	ginkgo.BeforeEach(func() {
		server = ghttp.NewServer()
		client = &registry.GHCR{Base: server.URL()}
	})

	ginkgo.AfterEach(func() {
		server.Close()
	})

	ginkgo.Describe("ListVersions", func() {
		ginkgo.It("should exchange an anonymous token and return the highest comparable tag", func() {
			server.AppendHandlers(
				tokenHandler(),
				ghttp.CombineHandlers(
					ghttp.VerifyRequest("GET", "/v2/owner/app/tags/list"),
					ghttp.VerifyHeaderKV("Authorization", "Bearer anon-token"),
					ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
						"tags": []string{"v1.9.0", "v1.10.0", "latest", "sha256-deadbeef"},
					}),
				),
			)

			latest, err := client.ListVersions(context.Background(), "owner", "app")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(latest).To(gomega.Equal("v1.10.0"))
		})

		ginkgo.It("should use a caller-supplied token without an exchange", func() {
			client.Token = "user-token"
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", "/v2/owner/app/tags/list"),
				ghttp.VerifyHeaderKV("Authorization", "Bearer user-token"),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"tags": []string{"2.0.0"},
				}),
			))

			latest, err := client.ListVersions(context.Background(), "owner", "app")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(latest).To(gomega.Equal("2.0.0"))
		})

		ginkgo.It("should return unknown when the token exchange fails", func() {
			server.AppendHandlers(
				ghttp.RespondWith(http.StatusUnauthorized, "unauthorized"),
			)

			latest, err := client.ListVersions(context.Background(), "owner", "app")
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(latest).To(gomega.Equal(registry.Unknown))
		})
	})

	ginkgo.Describe("FetchDigest", func() {
		ginkgo.It("should extract the config digest from the manifest", func() {
			server.AppendHandlers(
				tokenHandler(),
				ghttp.CombineHandlers(
					ghttp.VerifyRequest("GET", "/v2/owner/app/manifests/v1.10.0"),
					ghttp.VerifyHeaderKV("Authorization", "Bearer anon-token"),
					ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
						"config": map[string]string{"digest": "sha256:abc123"},
					}),
				),
			)

			digest, err := client.FetchDigest(context.Background(), "owner", "app", "v1.10.0")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(digest).To(gomega.Equal("abc123"))
		})

		ginkgo.It("should fall back to the top-level digest field", func() {
			server.AppendHandlers(
				tokenHandler(),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"digest": "sha256:def456",
				}),
			)

			digest, err := client.FetchDigest(context.Background(), "owner", "app", "v1.10.0")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(digest).To(gomega.Equal("def456"))
		})

		ginkgo.It("should return unknown when the manifest has no digest at all", func() {
			server.AppendHandlers(
				tokenHandler(),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{}),
			)

			digest, err := client.FetchDigest(context.Background(), "owner", "app", "v1.10.0")
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(digest).To(gomega.Equal(registry.Unknown))
		})
	})
})

var _ = ginkgo.Describe("the generic client", func() {
	ginkgo.It("should resolve every lookup to unknown", func() {
		client := registry.NewGeneric()

		latest, err := client.ListVersions(context.Background(), "ns", "repo")
		gomega.Expect(err).To(gomega.HaveOccurred())
		gomega.Expect(latest).To(gomega.Equal(registry.Unknown))

		digest, err := client.FetchDigest(context.Background(), "ns", "repo", "1.0.0")
		gomega.Expect(err).To(gomega.HaveOccurred())
		gomega.Expect(digest).To(gomega.Equal(registry.Unknown))
	})
})
