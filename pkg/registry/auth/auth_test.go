package auth_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/deckhand-tools/deckhand/pkg/registry/auth"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Suite")
}

var _ = ginkgo.Describe("the auth module", func() {
	var server *ghttp.Server

	ginkgo.BeforeEach(func() {
		server = ghttp.NewServer()
	})

	ginkgo.AfterEach(func() {
		server.Close()
	})

	ginkgo.When("fetching an anonymous pull token", func() {
		ginkgo.It("should request the pull scope for the repository path", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", "/token", "scope=repository:owner/app:pull"),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]string{"token": "anon-token"}),
			))

			token, err := auth.GetPullToken(context.Background(), server.URL()+"/token", "owner/app", "")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(token).To(gomega.Equal("anon-token"))
		})

		ginkgo.It("should fail on a non-success status", func() {
			server.AppendHandlers(
				ghttp.RespondWith(http.StatusUnauthorized, "unauthorized"),
			)

			_, err := auth.GetPullToken(context.Background(), server.URL()+"/token", "owner/app", "")
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should fail when the payload has no token", func() {
			server.AppendHandlers(
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]string{}),
			)

			_, err := auth.GetPullToken(context.Background(), server.URL()+"/token", "owner/app", "")
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should fail when the payload is not JSON", func() {
			server.AppendHandlers(
				ghttp.RespondWith(http.StatusOK, "<html>not json</html>"),
			)

			_, err := auth.GetPullToken(context.Background(), server.URL()+"/token", "owner/app", "")
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.When("a token override is supplied", func() {
		ginkgo.It("should return the override without calling the endpoint", func() {
			token, err := auth.GetPullToken(context.Background(), server.URL()+"/token", "owner/app", "user-token")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(token).To(gomega.Equal("user-token"))
			gomega.Expect(server.ReceivedRequests()).To(gomega.BeEmpty())
		})
	})
})
