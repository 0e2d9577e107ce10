package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/AlbertoOrlando/travel-journal-app/internal/filter"
	"github.com/AlbertoOrlando/travel-journal-app/internal/models"
	"github.com/AlbertoOrlando/travel-journal-app/internal/service"
	"github.com/AlbertoOrlando/travel-journal-app/internal/tags"
	"github.com/AlbertoOrlando/travel-journal-app/internal/upload"

	"github.com/gofiber/fiber/v2"
)

// postRequest is a create or update body, decoded from JSON or multipart.
type postRequest struct {
	fields service.PostFields
	tags   tags.Input
	media  *upload.File
}

// GetPosts handles GET /api/posts?q=&mood=&tag=&sort=
// @Summary List own posts
// @Description List the caller's posts, optionally filtered and sorted
// @Tags posts
// @Produce json
// @Param q query string false "Text in title or description"
// @Param mood query string false "Mood substring"
// @Param tag query string false "Tag substring"
// @Param sort query string false "date_desc, date_asc, cost_desc or cost_asc"
// @Success 200 {array} models.Post
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.List(c.UserContext(), service.ListPostsInput{
		UserID: currentUser(c),
		Criteria: filter.Criteria{
			Text: c.Query("q"),
			Mood: c.Query("mood"),
			Tag:  c.Query("tag"),
		},
		Sort: filter.ParseSortKey(c.Query("sort")),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description JSON body, or multipart form with an optional media file
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Param request body object{title=string,description=string,location=string,latitude=number,longitude=number,mood=string,positive_note=string,negative_note=string,physical_effort=int,economic_effort=int,actual_cost=number,media_url=string,tags=[]string} true "Post"
// @Param media formData file false "Image or video"
// @Success 201 {object} object{id=int,post=models.Post,msg=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	req, err := readPostRequest(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		UserID: currentUser(c),
		Fields: req.fields,
		Tags:   req.tags,
		Media:  req.media,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":   post.ID,
		"post": post,
		"msg":  "Post creato con successo!",
	})
}

// UpdatePost handles PUT /api/posts/:id. Every field is replaced; tags are
// replaced only when the request carries a tags field.
// @Summary Update a post
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{title=string,description=string,tags=[]string} true "Post"
// @Param media formData file false "Image or video"
// @Success 200 {object} object{post=models.Post,msg=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	req, err := readPostRequest(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.Update(c.UserContext(), service.UpdatePostInput{
		UserID: currentUser(c),
		PostID: id,
		Fields: req.fields,
		Tags:   req.tags,
		Media:  req.media,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"post": post,
		"msg":  "Post aggiornato con successo!",
	})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{msg=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(c.UserContext(), currentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"msg": "Post eliminato con successo!"})
}

func readPostRequest(c *fiber.Ctx) (*postRequest, error) {
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return readMultipartPost(c)
	}
	return readJSONPost(c.Body())
}

func readJSONPost(body []byte) (*postRequest, error) {
	values := map[string]any{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &values); err != nil {
			return nil, models.NewValidationError("Invalid request body")
		}
	}

	req := &postRequest{
		fields: postFields(func(key string) string { return scalarString(values[key]) }),
		tags:   tags.Absent,
	}
	// null is treated like an omitted field.
	if raw, ok := values["tags"]; ok && raw != nil {
		req.tags = tags.FromRaw(raw)
	}
	return req, nil
}

func readMultipartPost(c *fiber.Ctx) (*postRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, models.NewValidationError("Invalid multipart form")
	}

	req := &postRequest{
		fields: postFields(func(key string) string {
			if v := form.Value[key]; len(v) > 0 {
				return v[0]
			}
			return ""
		}),
		tags: tags.Absent,
	}

	// Repeated tags fields arrive as a list; a single one may be JSON or CSV.
	if raw, ok := form.Value["tags"]; ok {
		if len(raw) == 1 {
			req.tags = tags.FromRaw(raw[0])
		} else {
			req.tags = tags.FromRaw(raw)
		}
	}

	if files := form.File["media"]; len(files) > 0 {
		fh := files[0]
		// Browsers submit an empty part when no file was chosen.
		if fh.Filename != "" || fh.Size > 0 {
			f, err := readUpload(fh, c.App().Config().BodyLimit)
			if err != nil {
				return nil, err
			}
			req.media = f
		}
	}
	return req, nil
}

func readUpload(fh *multipart.FileHeader, limit int) (*upload.File, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("open upload: %w", err))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(io.LimitReader(src, int64(limit)))
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("read upload: %w", err))
	}
	return &upload.File{Filename: fh.Filename, Content: content}, nil
}

func postFields(get func(string) string) service.PostFields {
	return service.PostFields{
		Title:          get("title"),
		Description:    get("description"),
		Location:       get("location"),
		Latitude:       get("latitude"),
		Longitude:      get("longitude"),
		Mood:           get("mood"),
		PositiveNote:   get("positive_note"),
		NegativeNote:   get("negative_note"),
		PhysicalEffort: get("physical_effort"),
		EconomicEffort: get("economic_effort"),
		ActualCost:     get("actual_cost"),
		MediaURL:       get("media_url"),
	}
}

// scalarString renders a decoded JSON value the way a form would submit it.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
