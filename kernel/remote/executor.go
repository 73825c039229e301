package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/friendo-bot/friendo/kernel/model"
	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

const dialTimeout = 10 * time.Second

// Executor runs maintenance operations on the game host over SSH: tailing
// the server log and fetching the world backup. It is independent of the
// reconcile loop and only used on explicit user request.
type Executor struct {
	addr       string
	sshConfig  *ssh.ClientConfig
	logPath    string
	backupPath string
}

// NewExecutor builds an executor for the host at the given public address.
func NewExecutor(host string, cfg *model.RemoteConfig) (*Executor, error) {
	signer, err := loadSigner(cfg.KeyFile)
	if err != nil {
		return nil, err
	}

	return &Executor{
		addr: net.JoinHostPort(host, strconv.Itoa(cfg.SSHPort)),
		sshConfig: &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         dialTimeout,
		},
		logPath:    cfg.LogPath,
		backupPath: cfg.BackupPath,
	}, nil
}

// TailLog returns the last n lines of the server log.
func (e *Executor) TailLog(ctx context.Context, n int) (string, error) {
	if e.logPath == "" {
		return "", errors.New("no log_path configured")
	}

	client, err := e.dial(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		return "", errors.Wrap(err, "unable to open session")
	}
	defer func() { _ = session.Close() }()

	output, err := session.CombinedOutput(fmt.Sprintf("tail -n %d %s", n, e.logPath))
	if err != nil {
		return "", errors.Wrapf(err, "tail failed: %s", output)
	}
	return string(output), nil
}

// FetchBackup copies the configured backup file to localPath.
func (e *Executor) FetchBackup(ctx context.Context, localPath string) error {
	if e.backupPath == "" {
		return errors.New("no backup_path configured")
	}

	client, err := e.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ftp, err := sftp.NewClient(client)
	if err != nil {
		return errors.Wrap(err, "unable to open sftp session")
	}
	defer func() { _ = ftp.Close() }()

	src, err := ftp.Open(e.backupPath)
	if err != nil {
		return errors.Wrapf(err, "unable to open remote file '%s'", e.backupPath)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(localPath)
	if err != nil {
		return errors.Wrapf(err, "unable to create '%s'", localPath)
	}
	defer func() { _ = dst.Close() }()

	written, err := io.Copy(dst, src)
	if err != nil {
		return errors.Wrap(err, "copy failed")
	}
	logrus.Infof("fetched %d bytes from %s", written, e.backupPath)
	return nil
}

// dial opens the SSH connection, closing it early if the context is
// cancelled mid-operation.
func (e *Executor) dial(ctx context.Context) (*ssh.Client, error) {
	client, err := ssh.Dial("tcp", e.addr, e.sshConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to connect to %s", e.addr)
	}

	go func() {
		<-ctx.Done()
		_ = client.Close()
	}()

	return client, nil
}

// loadSigner parses the private key, prompting for a passphrase when the key
// is encrypted and stdin is a terminal.
func loadSigner(path string) (ssh.Signer, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read key file '%s'", path)
	}

	signer, err := ssh.ParsePrivateKey(pem)
	if err == nil {
		return signer, nil
	}

	if _, ok := err.(*ssh.PassphraseMissingError); !ok {
		return nil, errors.Wrapf(err, "unable to parse key file '%s'", path)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.Errorf("key file '%s' is encrypted and no terminal is available for a passphrase prompt", path)
	}

	fmt.Fprintf(os.Stderr, "Enter passphrase for %s: ", path)
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read passphrase")
	}

	signer, err = ssh.ParsePrivateKeyWithPassphrase(pem, passphrase)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decrypt key file '%s'", path)
	}
	return signer, nil
}
