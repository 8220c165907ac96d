package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/forms"
	"bitbucket.org/prajapati/wealth_backend/models/reports"
	"github.com/gin-gonic/gin"
)

// keepAliveInterval spaces the comments that keep idle streams open
// through proxies.
var keepAliveInterval = 25 * time.Second

func (r *Resource) list(c *gin.Context) {
	views, err := r.ops.list(c.Request.Context())
	if err != nil {
		writeError(c, "list "+r.Name, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (r *Resource) get(c *gin.Context) {
	view, err := r.ops.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "get "+r.Name, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (r *Resource) create(c *gin.Context) {
	var fields docstore.Data
	if err := c.ShouldBindJSON(&fields); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if errs := r.createForm().ValidateAll(forms.Fields(fields)); len(errs) > 0 {
		writeError(c, "create "+r.Name, errs)
		return
	}
	id, err := r.ops.create(c.Request.Context(), fields)
	if err != nil {
		writeError(c, "create "+r.Name, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// update validates the record as it will read after the merge, so a partial
// body only has to carry the changed fields.
func (r *Resource) update(c *gin.Context) {
	var fields docstore.Data
	if err := c.ShouldBindJSON(&fields); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	current, err := r.ops.raw(ctx, id)
	if err != nil {
		writeError(c, "update "+r.Name, err)
		return
	}
	if errs := r.Form.ValidateAll(mergeFields(current, fields)); len(errs) > 0 {
		writeError(c, "update "+r.Name, errs)
		return
	}
	if err := r.ops.update(ctx, id, fields); err != nil {
		writeError(c, "update "+r.Name, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (r *Resource) remove(c *gin.Context) {
	id := c.Param("id")
	if err := r.ops.remove(c.Request.Context(), id); err != nil {
		writeError(c, "remove "+r.Name, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// stream pushes a "snapshot" event with the whole collection now and after
// every change. Snapshots the client is too slow for are replaced by the
// newest one.
func (r *Resource) stream(c *gin.Context) {
	ctx := c.Request.Context()
	snapshots := make(chan []docstore.Data, 1)
	failures := make(chan error, 1)
	unsubscribe := r.ops.subscribe(ctx, func(views []docstore.Data) {
		select {
		case <-snapshots:
		default:
		}
		snapshots <- views
	}, func(err error) {
		select {
		case failures <- err:
		default:
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case views := <-snapshots:
			c.SSEvent("snapshot", views)
			return true
		case err := <-failures:
			config.LogError(config.GetLogger(), "handlers", "stream "+r.Name, "subscription", nil, err)
			c.SSEvent("error", gin.H{"error": err.Error()})
			return false
		case <-keepAlive.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			return true
		}
	})
}

// export serializes the collection, or the records named in ids, as a
// spreadsheet (default) or a PDF table.
func (r *Resource) export(c *gin.Context) {
	views, err := r.ops.list(c.Request.Context())
	if err != nil {
		writeError(c, "export "+r.Name, err)
		return
	}
	views = selectIDs(views, c.QueryArray("ids"))

	stamp := time.Now().Format("2006-01-02")
	switch strings.ToLower(c.DefaultQuery("format", "xlsx")) {
	case "xlsx", "excel":
		body, err := reports.ToSpreadsheet(r.Sheet, views, r.Leading...)
		if err != nil {
			writeError(c, "export "+r.Name, err)
			return
		}
		attachment(c, fmt.Sprintf("%s_%s.xlsx", r.Name, stamp), reports.SpreadsheetContentType, body)
	case "pdf":
		table := reports.NumberRows(reports.RecordTable(r.Columns, views), "NO", 10)
		body, _, err := reports.ToPDF(table, reports.PDFOptions{
			Landscape:  r.Landscape,
			Letterhead: reports.OfficeLetterhead,
		})
		if err != nil {
			writeError(c, "export "+r.Name, err)
			return
		}
		attachment(c, fmt.Sprintf("%s_%s.pdf", r.Name, stamp), reports.PDFContentType, body)
	default:
		badRequest(c, "format must be xlsx or pdf")
	}
}

// selectIDs keeps the views whose id is listed, in collection order. No ids
// keeps everything. ids may repeat the parameter or be comma separated.
func selectIDs(views []docstore.Data, ids []string) []docstore.Data {
	wanted := selectedIDs(ids)
	if len(wanted) == 0 {
		return views
	}
	out := make([]docstore.Data, 0, len(wanted))
	for _, v := range views {
		if id, _ := v["id"].(string); wanted[id] {
			out = append(out, v)
		}
	}
	return out
}

func attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
