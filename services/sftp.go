package services

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"habitual/config"
	"habitual/logger"
)

var ErrBackupNotConfigured = errors.New("sftp backup target is not configured")

// SFTPTarget uploads backup files to a remote directory over SFTP
type SFTPTarget struct {
	cfg config.BackupConfig
}

func NewSFTPTarget(cfg config.BackupConfig) *SFTPTarget {
	return &SFTPTarget{cfg: cfg}
}

func (t *SFTPTarget) authMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if t.cfg.SFTPPassword != "" {
		methods = append(methods, ssh.Password(t.cfg.SFTPPassword))
	}

	if t.cfg.SFTPKeyFile != "" {
		key, err := os.ReadFile(t.cfg.SFTPKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if len(methods) == 0 {
		return nil, errors.New("no authentication method provided")
	}
	return methods, nil
}

// hostKeyCallback pins the configured fingerprint. Without one the key is
// accepted and its fingerprint logged so it can be pinned afterwards.
func (t *SFTPTarget) hostKeyCallback(hostname string, remote net.Addr, key ssh.PublicKey) error {
	fingerprint := ssh.FingerprintSHA256(key)
	if t.cfg.SFTPHostKey == "" {
		logger.Warn("sftp host key not pinned", "host", hostname, "fingerprint", fingerprint)
		return nil
	}
	if t.cfg.SFTPHostKey != fingerprint {
		return fmt.Errorf("host key mismatch: expected %s, got %s", t.cfg.SFTPHostKey, fingerprint)
	}
	return nil
}

func (t *SFTPTarget) connect() (*ssh.Client, *sftp.Client, error) {
	auth, err := t.authMethods()
	if err != nil {
		return nil, nil, err
	}

	port := t.cfg.SFTPPort
	if port == 0 {
		port = 22
	}

	sshClient, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", t.cfg.SFTPHost, port), &ssh.ClientConfig{
		User:            t.cfg.SFTPUser,
		Auth:            auth,
		HostKeyCallback: t.hostKeyCallback,
		Timeout:         30 * time.Second,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect: %w", err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, nil, fmt.Errorf("failed to create SFTP client: %w", err)
	}
	return sshClient, sftpClient, nil
}

// Upload writes content to name inside the configured directory and returns the remote path
func (t *SFTPTarget) Upload(name string, content io.Reader) (string, error) {
	if !t.cfg.Enabled() {
		return "", ErrBackupNotConfigured
	}

	sshClient, sftpClient, err := t.connect()
	if err != nil {
		return "", err
	}
	defer sshClient.Close()
	defer sftpClient.Close()

	dir := t.cfg.SFTPDir
	if dir == "" {
		dir = "."
	}
	if err := sftpClient.MkdirAll(dir); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	remotePath := path.Join(dir, name)
	file, err := sftpClient.Create(remotePath)
	if err != nil {
		return "", fmt.Errorf("failed to create remote file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return remotePath, nil
}
