package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// Categories, subcategories and brands share one handler set on CatalogHTTP.

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	page, err := h.Svc.ListCategories(ctx, c.QueryParams())
	if err != nil {
		return fail(l, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "get_category_error", err)
	}
	cat, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return fail(l, "get_category_error", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.NamedRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_category_error", err)
	}
	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return fail(l, "create_category_error", err)
	}
	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "update_category_error", err)
	}
	var req transport.NamedRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_category_error", err)
	}
	cat, err := h.Svc.UpdateCategory(ctx, id, req)
	if err != nil {
		return fail(l, "update_category_error", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "delete_category_error", err)
	}
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return fail(l, "delete_category_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSubcategories serves both /subcategories and /categories/:categoryId/subcategories.
func (h *CatalogHTTP) ListSubcategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "subcategory.list")

	var categoryID uuid.UUID
	if c.Param("categoryId") != "" {
		id, err := pathUUID(c, "categoryId")
		if err != nil {
			return fail(l, "list_subcategories_error", err)
		}
		categoryID = id
	}
	page, err := h.Svc.ListSubcategories(ctx, categoryID, c.QueryParams())
	if err != nil {
		return fail(l, "list_subcategories_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) GetSubcategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "subcategory.get")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "get_subcategory_error", err)
	}
	sc, err := h.Svc.GetSubcategory(ctx, id)
	if err != nil {
		return fail(l, "get_subcategory_error", err)
	}
	return c.JSON(http.StatusOK, sc)
}

// CreateSubcategory takes the parent from the path when nested.
func (h *CatalogHTTP) CreateSubcategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "subcategory.create")

	var req transport.NamedRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_subcategory_error", err)
	}
	if c.Param("categoryId") != "" {
		id, err := pathUUID(c, "categoryId")
		if err != nil {
			return fail(l, "create_subcategory_error", err)
		}
		req.CategoryID = id
	}
	sc, err := h.Svc.CreateSubcategory(ctx, req)
	if err != nil {
		return fail(l, "create_subcategory_error", err)
	}
	l.Info("create_subcategory_success", "subcategory_id", sc.ID)
	return c.JSON(http.StatusCreated, sc)
}

func (h *CatalogHTTP) UpdateSubcategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "subcategory.update")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "update_subcategory_error", err)
	}
	var req transport.NamedRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_subcategory_error", err)
	}
	sc, err := h.Svc.UpdateSubcategory(ctx, id, req)
	if err != nil {
		return fail(l, "update_subcategory_error", err)
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *CatalogHTTP) DeleteSubcategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "subcategory.delete")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "delete_subcategory_error", err)
	}
	if err := h.Svc.DeleteSubcategory(ctx, id); err != nil {
		return fail(l, "delete_subcategory_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) ListBrands(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "brand.list")

	page, err := h.Svc.ListBrands(ctx, c.QueryParams())
	if err != nil {
		return fail(l, "list_brands_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) GetBrand(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "brand.get")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "get_brand_error", err)
	}
	b, err := h.Svc.GetBrand(ctx, id)
	if err != nil {
		return fail(l, "get_brand_error", err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *CatalogHTTP) CreateBrand(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "brand.create")

	var req transport.NamedRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_brand_error", err)
	}
	b, err := h.Svc.CreateBrand(ctx, req)
	if err != nil {
		return fail(l, "create_brand_error", err)
	}
	l.Info("create_brand_success", "brand_id", b.ID)
	return c.JSON(http.StatusCreated, b)
}

func (h *CatalogHTTP) UpdateBrand(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "brand.update")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "update_brand_error", err)
	}
	var req transport.NamedRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_brand_error", err)
	}
	b, err := h.Svc.UpdateBrand(ctx, id, req)
	if err != nil {
		return fail(l, "update_brand_error", err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *CatalogHTTP) DeleteBrand(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "brand.delete")

	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(l, "delete_brand_error", err)
	}
	if err := h.Svc.DeleteBrand(ctx, id); err != nil {
		return fail(l, "delete_brand_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
