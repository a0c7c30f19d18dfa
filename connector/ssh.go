package connector

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/arkadix/hostforge/common"
	"github.com/arkadix/hostforge/logger"
)

const socketEnvPrefix = "env:"

var _ Connection = (*connection)(nil)

type connection struct {
	mu         sync.Mutex
	sshclient  *ssh.Client
	sftpclient *sftp.Client
	config     Config

	agentSocketConn net.Conn
}

// NewConnection dials the host described by cfg and returns an established
// Connection. Host keys are not verified; provisioning targets are assumed
// to be freshly created machines without known keys.
func NewConnection(cfg Config) (Connection, error) {
	cfg, err := validateConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate ssh connection parameters")
	}

	conn := &connection{config: cfg}
	authMethods := make([]ssh.AuthMethod, 0)

	if len(cfg.Password) > 0 {
		authMethods = append(authMethods, ssh.Password(cfg.Password))
	}

	if len(cfg.PrivateKey) > 0 {
		signer, parseErr := ssh.ParsePrivateKey([]byte(cfg.PrivateKey))
		if parseErr != nil {
			return nil, errors.Wrap(parseErr, "the given SSH key could not be parsed")
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}

	if len(cfg.AgentSocket) > 0 {
		addr := cfg.AgentSocket
		if strings.HasPrefix(cfg.AgentSocket, socketEnvPrefix) {
			envName := strings.TrimPrefix(cfg.AgentSocket, socketEnvPrefix)
			if envAddr := os.Getenv(envName); len(envAddr) > 0 {
				addr = envAddr
			} else {
				logger.Log.Warnf("SSH agent environment variable %s not found, using socket string %s", envName, addr)
			}
		}

		agentConn, dialErr := net.Dial("unix", addr)
		if dialErr != nil {
			return nil, errors.Wrapf(dialErr, "could not open SSH agent socket %q", addr)
		}
		signers, signersErr := agent.NewClient(agentConn).Signers()
		if signersErr != nil {
			_ = agentConn.Close()
			return nil, errors.Wrap(signersErr, "error when creating signer for SSH agent")
		}
		conn.agentSocketConn = agentConn
		authMethods = append(authMethods, ssh.PublicKeys(signers...))
	}

	sshConfig := &ssh.ClientConfig{
		User:            cfg.Username,
		Timeout:         cfg.Timeout,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	endpoint := net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))
	client, err := ssh.Dial("tcp", endpoint, sshConfig)
	if err != nil {
		conn.cleanupAgentSocket()
		return nil, errors.Wrapf(err, "could not establish connection to %s", endpoint)
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		_ = client.Close()
		conn.cleanupAgentSocket()
		return nil, errors.Wrap(err, "failed to create SFTP client")
	}

	conn.sshclient = client
	conn.sftpclient = sftpClient
	return conn, nil
}

func validateConfig(cfg Config) (Config, error) {
	if len(cfg.Username) == 0 {
		return cfg, errors.New("no username specified for SSH connection")
	}
	if len(cfg.Address) == 0 {
		return cfg, errors.New("no address specified for SSH connection")
	}
	if len(cfg.Password) == 0 && len(cfg.PrivateKey) == 0 && len(cfg.KeyFile) == 0 && len(cfg.AgentSocket) == 0 {
		return cfg, errors.New("must specify at least one of password, private key, keyfile or agent socket")
	}

	if len(cfg.PrivateKey) == 0 && len(cfg.KeyFile) > 0 {
		content, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return cfg, errors.Wrapf(err, "failed to read keyfile %q", cfg.KeyFile)
		}
		cfg.PrivateKey = string(content)
	}

	if cfg.Port <= 0 {
		cfg.Port = common.DefaultSSHPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg, nil
}

func (c *connection) cleanupAgentSocket() {
	if c.agentSocketConn != nil {
		_ = c.agentSocketConn.Close()
		c.agentSocketConn = nil
	}
}

func (c *connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []string
	if c.sftpclient != nil {
		if err := c.sftpclient.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("sftp close error: %v", err))
		}
		c.sftpclient = nil
	}
	if c.sshclient != nil {
		if err := c.sshclient.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("ssh close error: %v", err))
		}
		c.sshclient = nil
	}
	if c.agentSocketConn != nil {
		if err := c.agentSocketConn.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("agent socket close error: %v", err))
		}
		c.agentSocketConn = nil
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (c *connection) session() (*ssh.Session, error) {
	c.mu.Lock()
	client := c.sshclient
	c.mu.Unlock()

	if client == nil {
		return nil, errors.New("ssh connection is closed or not initialized")
	}
	return client.NewSession()
}

func (c *connection) Exec(ctx context.Context, cmd string) ([]byte, []byte, int, error) {
	sess, err := c.session()
	if err != nil {
		return nil, nil, -1, err
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- sess.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		// Best effort: signal the remote process, then report cancellation.
		_ = sess.Signal(ssh.SIGKILL)
		return stdout.Bytes(), stderr.Bytes(), -1, ctx.Err()
	case runErr := <-done:
		if runErr == nil {
			return stdout.Bytes(), stderr.Bytes(), 0, nil
		}
		var exitErr *ssh.ExitError
		if errors.As(runErr, &exitErr) {
			return stdout.Bytes(), stderr.Bytes(), exitErr.ExitStatus(), nil
		}
		return stdout.Bytes(), stderr.Bytes(), -1, errors.Wrapf(runErr, "failed to run command %q", cmd)
	}
}

func (c *connection) sftpSession() (*sftp.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sftpclient == nil {
		return nil, errors.New("sftp client is closed or not initialized")
	}
	return c.sftpclient, nil
}

func (c *connection) WriteFile(ctx context.Context, remotePath string, content []byte, mode fs.FileMode) error {
	client, err := c.sftpSession()
	if err != nil {
		return err
	}

	if err := client.MkdirAll(path.Dir(remotePath)); err != nil {
		return errors.Wrapf(err, "failed to create parent directory of %s", remotePath)
	}

	f, err := client.OpenFile(remotePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
	if err != nil {
		return errors.Wrapf(err, "failed to open remote file %s", remotePath)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to write remote file %s", remotePath)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close remote file %s", remotePath)
	}
	return errors.Wrapf(client.Chmod(remotePath, mode), "failed to chmod remote file %s", remotePath)
}

func (c *connection) ReadFile(ctx context.Context, remotePath string) ([]byte, error) {
	client, err := c.sftpSession()
	if err != nil {
		return nil, err
	}
	f, err := client.Open(remotePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open remote file %s", remotePath)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, errors.Wrapf(err, "failed to read remote file %s", remotePath)
	}
	return buf.Bytes(), nil
}

func (c *connection) Stat(ctx context.Context, remotePath string) (os.FileInfo, error) {
	client, err := c.sftpSession()
	if err != nil {
		return nil, err
	}
	return client.Stat(remotePath)
}

func (c *connection) MkDirAll(ctx context.Context, remotePath string, mode fs.FileMode) error {
	client, err := c.sftpSession()
	if err != nil {
		return err
	}
	if err := client.MkdirAll(remotePath); err != nil {
		return errors.Wrapf(err, "failed to create remote directory %s", remotePath)
	}
	return errors.Wrapf(client.Chmod(remotePath, mode), "failed to chmod remote directory %s", remotePath)
}

func (c *connection) Remove(ctx context.Context, remotePath string) error {
	// sftp has no recursive remove; shell out instead.
	_, stderr, code, err := c.Exec(ctx, fmt.Sprintf(common.RemoveCmdTpl, remotePath))
	if err != nil {
		return err
	}
	if code != 0 {
		return errors.Errorf("failed to remove %s: %s", remotePath, strings.TrimSpace(string(stderr)))
	}
	return nil
}
