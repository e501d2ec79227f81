package registry_test

import (
	"context"
	"net/http"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/deckhand-tools/deckhand/pkg/registry"
)

var _ = ginkgo.Describe("the Docker Hub client", func() {
	var server *ghttp.Server
	var client *registry.DockerHub

	ginkgo.BeforeEach(func() {
		server = ghttp.NewServer()
		client = &registry.DockerHub{APIBase: server.URL(), PullBase: server.URL()}
	})

	ginkgo.AfterEach(func() {
		server.Close()
	})

	ginkgo.Describe("ListVersions", func() {
		ginkgo.It("should return the highest comparable tag", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", "/v2/repositories/library/redis/tags", "page_size=100"),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"results": []map[string]string{
						{"name": "6.0.0"},
						{"name": "6.2.0"},
						{"name": "7.0.0"},
						{"name": "latest"},
						{"name": "main"},
					},
				}),
			))

			latest, err := client.ListVersions(context.Background(), "library", "redis")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(latest).To(gomega.Equal("7.0.0"))
		})

		ginkgo.It("should return unknown when only non-semantic tags exist", func() {
			server.AppendHandlers(
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"results": []map[string]string{
						{"name": "latest"},
						{"name": "edge"},
					},
				}),
			)

			latest, err := client.ListVersions(context.Background(), "library", "redis")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(latest).To(gomega.Equal(registry.Unknown))
		})

		ginkgo.It("should return unknown on a non-success status", func() {
			server.AppendHandlers(
				ghttp.RespondWith(http.StatusNotFound, "not found"),
			)

			latest, err := client.ListVersions(context.Background(), "library", "ghost")
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(latest).To(gomega.Equal(registry.Unknown))
		})

		ginkgo.It("should return unknown on a non-JSON payload", func() {
			server.AppendHandlers(
				ghttp.RespondWith(http.StatusOK, "<html>rate limited</html>"),
			)

			latest, err := client.ListVersions(context.Background(), "library", "redis")
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(latest).To(gomega.Equal(registry.Unknown))
		})
	})

	ginkgo.Describe("FetchDigest", func() {
		ginkgo.It("should read the digest from the tag detail endpoint", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", "/v2/repositories/library/redis/tags/7.0.0"),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"images": []map[string]string{
						{"digest": "sha256:abc123"},
					},
				}),
			))

			digest, err := client.FetchDigest(context.Background(), "library", "redis", "7.0.0")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(digest).To(gomega.Equal("abc123"))
		})

		ginkgo.It("should fall back to the manifest endpoint when the detail payload has no digest", func() {
			server.AppendHandlers(
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"images": []map[string]string{}}),
				ghttp.CombineHandlers(
					ghttp.VerifyRequest("GET", "/v2/library/redis/manifests/7.0.0"),
					ghttp.VerifyHeaderKV("Accept", "application/vnd.docker.distribution.manifest.v2+json"),
					ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
						"config": map[string]string{"digest": "sha256:def456"},
					}),
				),
			)

			digest, err := client.FetchDigest(context.Background(), "library", "redis", "7.0.0")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(digest).To(gomega.Equal("def456"))
		})

		ginkgo.It("should return unknown when both endpoints fail", func() {
			server.AppendHandlers(
				ghttp.RespondWith(http.StatusNotFound, "not found"),
				ghttp.RespondWith(http.StatusNotFound, "not found"),
			)

			digest, err := client.FetchDigest(context.Background(), "library", "ghost", "1.0.0")
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(digest).To(gomega.Equal(registry.Unknown))
		})
	})
})
