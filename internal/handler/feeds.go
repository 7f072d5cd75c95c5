package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/jobadverts/board/internal/listing"
	"github.com/jobadverts/board/internal/server"
	"github.com/snabb/sitemap"
)

func ServeRSSFeed(svr server.Server, listings *listing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobPosts, err := listings.PublicListing("")
		if err != nil {
			svr.Log(err, "unable to retrieve jobs for RSS Feed")
			svr.XML(w, http.StatusInternalServerError, []byte{})
			return
		}
		siteURL := svr.GetConfig().SiteURL()
		siteName := svr.GetConfig().SiteName
		feed := &feeds.Feed{
			Title:       siteName,
			Link:        &feeds.Link{Href: siteURL},
			Description: fmt.Sprintf("Latest job adverts on %s", siteName),
			Created:     time.Now(),
		}
		for _, j := range jobPosts {
			feed.Items = append(feed.Items, &feeds.Item{
				Id:          fmt.Sprintf("%s/job/%d", siteURL, j.ID),
				Title:       fmt.Sprintf("%s with %s - %s", j.Position, j.CompanyName, j.Location),
				Link:        &feeds.Link{Href: fmt.Sprintf("%s/job/%d?source=rss", siteURL, j.ID)},
				Description: string(svr.MarkdownToHTML(j.Intro + "\n\n**Apply by:** " + j.DeadlineString())),
				Created:     j.CreatedAt,
			})
		}
		rssFeed, err := feed.ToRss()
		if err != nil {
			svr.Log(err, "unable to convert rss feed to xml")
			svr.XML(w, http.StatusInternalServerError, []byte{})
			return
		}
		svr.XML(w, http.StatusOK, []byte(rssFeed))
	}
}

func SitemapHandler(svr server.Server, listings *listing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobPosts, err := listings.PublicListing("")
		if err != nil {
			svr.Log(err, "unable to retrieve jobs for sitemap")
			svr.TEXT(w, http.StatusInternalServerError, "unable to fetch sitemap")
			return
		}
		siteURL := svr.GetConfig().SiteURL()
		sitemapFile := sitemap.New()
		sitemapFile.Add(&sitemap.URL{
			Loc:        siteURL + "/",
			ChangeFreq: sitemap.ChangeFreq("daily"),
		})
		for _, j := range jobPosts {
			lastMod := j.CreatedAt
			sitemapFile.Add(&sitemap.URL{
				Loc:        fmt.Sprintf("%s/job/%d", siteURL, j.ID),
				LastMod:    &lastMod,
				ChangeFreq: sitemap.ChangeFreq("weekly"),
			})
		}
		buf := new(bytes.Buffer)
		if _, err := sitemapFile.WriteTo(buf); err != nil {
			svr.Log(err, "sitemapFile.WriteTo")
			svr.TEXT(w, http.StatusInternalServerError, "unable to save sitemap file")
			return
		}
		svr.XML(w, http.StatusOK, buf.Bytes())
	}
}
