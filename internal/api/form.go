package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/apperrors"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/types"
)

// multipartOverhead is allowed on top of the image limit for the text fields
const multipartOverhead = 1 << 20

// readRecipeInput parses a recipe create or update body, sent either as
// JSON or as multipart form data with an optional "image" file.
func readRecipeInput(c *gin.Context, maxUpload int64) (types.RecipeInput, *service.ImageUpload, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return readRecipeForm(c, maxUpload)
	}

	var in types.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		return in, nil, errInvalidBody
	}
	return in, nil, nil
}

func readRecipeForm(c *gin.Context, maxUpload int64) (types.RecipeInput, *service.ImageUpload, error) {
	var in types.RecipeInput

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload+multipartOverhead)
	if err := c.Request.ParseMultipartForm(maxUpload); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return in, nil, tooLarge(maxUpload)
		}
		return in, nil, errInvalidBody
	}
	form := c.Request.MultipartForm

	in.Title = formString(form, "title")
	in.Category = formString(form, "category")
	in.Difficulty = formString(form, "difficulty")
	if s := formString(form, "cookingTime"); s != nil && *s != "" {
		n, err := strconv.Atoi(*s)
		if err != nil {
			return in, nil, apperrors.Validation(`"cookingTime" must be a whole number`)
		}
		in.CookingTime = &n
	}

	in.Ingredients = indexedList(c.PostFormMap("ingredients"), c.PostFormArray("ingredients"))
	in.Instructions = indexedList(c.PostFormMap("instructions"), c.PostFormArray("instructions"))

	nutrition, err := formNutrition(form)
	if err != nil {
		return in, nil, err
	}
	in.NutritionalInfo = nutrition

	upload, err := formImage(form, maxUpload)
	if err != nil {
		return in, nil, err
	}
	return in, upload, nil
}

func formString(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

// indexedList orders key[0], key[1], ... entries by index. The plain
// repeated key is used when no indexed entries are present.
func indexedList(indexed map[string]string, plain []string) []string {
	type entry struct {
		index int
		value string
	}
	entries := make([]entry, 0, len(indexed))
	for k, v := range indexed {
		idx, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		entries = append(entries, entry{index: idx, value: v})
	}

	if len(entries) == 0 {
		return plain
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })
	list := make([]string, len(entries))
	for i, e := range entries {
		list[i] = e.value
	}
	return list
}

// formNutrition reads nutritionalInfo.<field> values. Blank fields are
// treated as not provided.
func formNutrition(form *multipart.Form) (*models.NutritionalInfo, error) {
	var info models.NutritionalInfo
	found := false
	fields := []struct {
		name string
		dst  **float64
	}{
		{"calories", &info.Calories},
		{"protein", &info.Protein},
		{"fat", &info.Fat},
		{"carbs", &info.Carbs},
	}
	for _, f := range fields {
		s := formString(form, "nutritionalInfo."+f.name)
		if s == nil || strings.TrimSpace(*s) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
		if err != nil {
			return nil, apperrors.Validationf(`"nutritionalInfo.%s" must be a number`, f.name)
		}
		*f.dst = &v
		found = true
	}
	if !found {
		return nil, nil
	}
	return &info, nil
}

func formImage(form *multipart.Form, maxUpload int64) (*service.ImageUpload, error) {
	files := form.File["image"]
	if len(files) == 0 {
		return nil, nil
	}
	header := files[0]
	if header.Size > maxUpload {
		return nil, tooLarge(maxUpload)
	}

	f, err := header.Open()
	if err != nil {
		return nil, errInvalidBody
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUpload+1))
	if err != nil {
		return nil, errInvalidBody
	}
	if int64(len(data)) > maxUpload {
		return nil, tooLarge(maxUpload)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &service.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func tooLarge(maxUpload int64) error {
	return apperrors.Validationf("Image must be at most %d MB", maxUpload>>20)
}
