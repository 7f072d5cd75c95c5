package handler

import (
	"net/http"

	"github.com/jobadverts/board/internal/authoriser"
	"github.com/jobadverts/board/internal/listing"
	"github.com/jobadverts/board/internal/posting"
	"github.com/jobadverts/board/internal/server"
)

// RegisterRoutes wires every page of the board onto svr. Logos are served
// from uploadDir under /static/uploads/.
func RegisterRoutes(svr server.Server, auth authoriser.Authoriser, listings *listing.Service, workflow *posting.Workflow, uploadDir string) {
	svr.RegisterPathPrefix("/static/uploads/", http.StripPrefix("/static/uploads/", DisableDirListing(http.FileServer(http.Dir(uploadDir)))), []string{"GET"})

	svr.RegisterRoute("/rss", ServeRSSFeed(svr, listings), []string{"GET"})
	svr.RegisterRoute("/sitemap.xml", SitemapHandler(svr, listings), []string{"GET"})

	svr.RegisterRoute("/", IndexPageHandler(svr, listings), []string{"GET"})
	svr.RegisterRoute("/job/{id:[0-9]+}", JobDetailPageHandler(svr, listings), []string{"GET"})

	//
	// auth routes
	//

	svr.RegisterRoute("/admin/login", GetLoginPageHandler(svr), []string{"GET"})
	svr.RegisterRoute("/admin/login", PostLoginPageHandler(svr, auth), []string{"POST"})
	svr.RegisterRoute("/admin/logout", LogoutPageHandler(svr), []string{"GET"})

	//
	// admin routes
	// protected by the admin session
	//

	svr.RegisterRoute("/admin/dashboard", AdminDashboardPageHandler(svr, listings), []string{"GET"})
	svr.RegisterRoute("/admin/add", AddJobPageHandler(svr), []string{"GET"})
	svr.RegisterRoute("/admin/add", SubmitJobPageHandler(svr, workflow), []string{"POST"})
	svr.RegisterRoute("/admin/edit/{id:[0-9]+}", EditJobPageHandler(svr, workflow), []string{"GET"})
	svr.RegisterRoute("/admin/edit/{id:[0-9]+}", UpdateJobPageHandler(svr, workflow), []string{"POST"})
	svr.RegisterRoute("/admin/delete/{id:[0-9]+}", DeleteJobPageHandler(svr, workflow), []string{"GET"})

	svr.SetNotFoundHandler(NotFoundHandler(svr))
}
