package vault

import (
	"context"
	"net/http"

	"github.com/systmms/vaultkit/pkg/transport"
)

// ListMounts returns the mounted secret engines keyed by path.
func (c *Client) ListMounts(ctx context.Context) (map[string]*MountOutput, error) {
	list, err := call(ctx, c, transport.Request[mountList]{
		Path:   "v1/sys/mounts",
		Method: http.MethodGet,
	})
	if err != nil {
		return nil, wrap("list mounts", "", err)
	}
	if list == nil || list.Data == nil {
		return map[string]*MountOutput{}, nil
	}
	return list.Data, nil
}

// Mount enables a secret engine at path.
func (c *Client) Mount(ctx context.Context, path string, input MountInput) error {
	p, err := cleanPath("path", path)
	if err != nil {
		return err
	}
	if input.Type == "" {
		return transport.MissingArgument("type")
	}

	if _, err := call(ctx, c, transport.Request[struct{}]{
		Path:    "v1/sys/mounts/" + escapePath(p),
		Method:  http.MethodPost,
		Payload: input,
	}); err != nil {
		return wrap("mount", p, err)
	}
	c.logger.Debug("Mounted %s engine at %s", input.Type, p)
	return nil
}

// Unmount disables the secret engine at path and deletes its data.
func (c *Client) Unmount(ctx context.Context, path string) error {
	p, err := cleanPath("path", path)
	if err != nil {
		return err
	}

	if _, err := call(ctx, c, transport.Request[struct{}]{
		Path:   "v1/sys/mounts/" + escapePath(p),
		Method: http.MethodDelete,
	}); err != nil {
		return wrap("unmount", p, err)
	}
	return nil
}

// Remount moves a secret engine and its data from one path to another.
func (c *Client) Remount(ctx context.Context, from, to string) error {
	src, err := cleanPath("from", from)
	if err != nil {
		return err
	}
	dst, err := cleanPath("to", to)
	if err != nil {
		return err
	}

	if _, err := call(ctx, c, transport.Request[struct{}]{
		Path:    "v1/sys/remount",
		Method:  http.MethodPost,
		Payload: map[string]string{"from": src, "to": dst},
	}); err != nil {
		return wrap("remount", src, err)
	}
	return nil
}
