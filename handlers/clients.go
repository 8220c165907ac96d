package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/forms"
	"bitbucket.org/prajapati/wealth_backend/models"
	"bitbucket.org/prajapati/wealth_backend/models/reports"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// maxImageBytes caps profile image uploads.
const maxImageBytes = 10 << 20

type clientHandlers struct {
	clients *models.ClientRepository
}

func (h *clientHandlers) addFamilyMember(c *gin.Context) {
	var fields docstore.Data
	if err := c.ShouldBindBodyWith(&fields, binding.JSON); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if errs := forms.FamilyMemberForm.ValidateAll(forms.Fields(fields)); len(errs) > 0 {
		writeError(c, "addFamilyMember", errs)
		return
	}
	var member models.FamilyMember
	if err := c.ShouldBindBodyWith(&member, binding.JSON); err != nil {
		badRequest(c, "invalid family member")
		return
	}
	if err := h.clients.AddFamilyMember(c.Request.Context(), c.Param("id"), member); err != nil {
		writeError(c, "addFamilyMember", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
}

// setProfileImage accepts a multipart "image" file or the raw image as the
// request body.
func (h *clientHandlers) setProfileImage(c *gin.Context) {
	image, closeImage, err := uploadedImage(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer closeImage()
	ref, err := h.clients.SetProfileImage(c.Request.Context(), c.Param("id"), image)
	if err != nil {
		writeError(c, "setProfileImage", err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func uploadedImage(c *gin.Context) (io.Reader, func(), error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("image")
		if err != nil {
			return nil, nil, fmt.Errorf("image file is required")
		}
		f, err := header.Open()
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	}
	return c.Request.Body, func() {}, nil
}

// runsheet prints the courier runsheet for the clients in ids. Each client's
// pick up and delivery note comes from pickup[<clientId>].
func (h *clientHandlers) runsheet(c *gin.Context) {
	ids := selectedIDs(c.QueryArray("ids"))
	if len(ids) == 0 {
		badRequest(c, "select at least one client")
		return
	}
	ctx := c.Request.Context()
	all, err := h.clients.List(ctx)
	if err != nil {
		writeError(c, "runsheet", err)
		return
	}
	notes := c.QueryMap("pickup")
	stops := make([]reports.RunsheetStop, 0, len(ids))
	for _, client := range all {
		if !ids[client.ID] {
			continue
		}
		stops = append(stops, reports.RunsheetStop{
			Name:           client.Name,
			City:           client.City,
			Location:       client.Location,
			PickupDelivery: notes[client.ID],
		})
	}
	if len(stops) == 0 {
		writeError(c, "runsheet", docstore.ErrNotFound)
		return
	}
	name := c.Query("name")
	date := c.Query("date")
	body, _, err := reports.Runsheet(stops, name, date)
	if err != nil {
		writeError(c, "runsheet", err)
		return
	}
	filename := "Runsheet.pdf"
	if name != "" || date != "" {
		filename = fmt.Sprintf("Runsheet_%s_%s.pdf", strings.ReplaceAll(name, " ", "_"), date)
	}
	attachment(c, filename, reports.PDFContentType, body)
}

func selectedIDs(raw []string) map[string]bool {
	ids := map[string]bool{}
	for _, r := range raw {
		for _, id := range strings.Split(r, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids[id] = true
			}
		}
	}
	return ids
}
